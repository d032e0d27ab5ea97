package form

import "github.com/akm12109/SDM-Admin/internal/domain"

// Blob key namespaces.
const (
	NamespaceHomework = "homework_photos"
	NamespaceTeachers = "teachers"
	NamespaceEvents   = "events"
	NamespaceSlides   = "slides"
	NamespaceStudents = "students"
)

func NoticeSpec() Spec[*domain.Notice] {
	return Spec[*domain.Notice]{
		Name:       "notice",
		Collection: domain.CollectionNotices,
		Blank:      func() *domain.Notice { return &domain.Notice{} },
	}
}

// ClassSpec resets the meeting link to the school's default room.
func ClassSpec() Spec[*domain.Class] {
	return Spec[*domain.Class]{
		Name:       "class",
		Collection: domain.CollectionClasses,
		Blank:      func() *domain.Class { return &domain.Class{JitsiLink: domain.DefaultJitsiLink} },
	}
}

func VideoSpec() Spec[*domain.Video] {
	return Spec[*domain.Video]{
		Name:       "video",
		Collection: domain.CollectionVideos,
		Blank:      func() *domain.Video { return &domain.Video{} },
	}
}

func HomeworkSpec() Spec[*domain.Homework] {
	return Spec[*domain.Homework]{
		Name:         "homework",
		Collection:   domain.CollectionHomework,
		Namespace:    NamespaceHomework,
		FileField:    "photo",
		FileRequired: true,
		Accept:       "image/",
		Blank:        func() *domain.Homework { return &domain.Homework{} },
	}
}

func EventSpec() Spec[*domain.Event] {
	return Spec[*domain.Event]{
		Name:         "event",
		Collection:   domain.CollectionEvents,
		Namespace:    NamespaceEvents,
		FileField:    "image",
		FileRequired: true,
		Accept:       "image/",
		Blank:        func() *domain.Event { return &domain.Event{} },
	}
}

func SlideSpec() Spec[*domain.Slide] {
	return Spec[*domain.Slide]{
		Name:         "slide",
		Collection:   domain.CollectionSlides,
		Namespace:    NamespaceSlides,
		FileField:    "image",
		FileRequired: true,
		Accept:       "image/",
		Blank:        func() *domain.Slide { return &domain.Slide{} },
	}
}

// TeacherSpec keeps the photo optional.
func TeacherSpec() Spec[*domain.Teacher] {
	return Spec[*domain.Teacher]{
		Name:       "teacher",
		Collection: domain.CollectionTeachers,
		Namespace:  NamespaceTeachers,
		FileField:  "photo",
		Accept:     "image/",
		Blank:      func() *domain.Teacher { return &domain.Teacher{} },
	}
}

func StudentSpec() Spec[*domain.User] {
	return Spec[*domain.User]{
		Name:       "student",
		Collection: domain.CollectionUsers,
		Namespace:  NamespaceStudents,
		FileField:  "profilePhoto",
		Accept:     "image/",
		Blank:      func() *domain.User { return &domain.User{Role: domain.RoleStudent} },
	}
}
