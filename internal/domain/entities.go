package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ClassStatus string

const (
	ClassPending  ClassStatus = "pending"
	ClassApproved ClassStatus = "approved"
	ClassDenied   ClassStatus = "denied"
)

func (s ClassStatus) Valid() bool {
	switch s {
	case ClassPending, ClassApproved, ClassDenied:
		return true
	}
	return false
}

type ClassOffering struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	InstructorName   string             `bson:"instructorName" json:"instructorName"`
	InstructorEmail  string             `bson:"instructorEmail" json:"instructorEmail"`
	Seats            int                `bson:"seats" json:"seats"`
	Price            float64            `bson:"price" json:"price"`
	EnrolledStudents int                `bson:"enrolledStudents" json:"enrolledStudents"`
	Status           ClassStatus        `bson:"status" json:"status"`
	Feedback         string             `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

type Instructor struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Image            string             `bson:"image,omitempty" json:"image,omitempty"`
	StudentsEnrolled int                `bson:"studentsEnrolled" json:"studentsEnrolled"`
	Classes          []string           `bson:"classes,omitempty" json:"classes,omitempty"`
}

type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Email string             `bson:"email" json:"email"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
	Role  Role               `bson:"role" json:"role"`
}

// UserPatch carries the fields a PATCH may change; nil means untouched.
type UserPatch struct {
	Name  *string
	Image *string
	Role  *Role
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Image == nil && p.Role == nil
}

type CartSelection struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	ClassID        string             `bson:"classId,omitempty" json:"classId,omitempty"`
	ClassName      string             `bson:"className,omitempty" json:"className,omitempty"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	InstructorName string             `bson:"instructorName,omitempty" json:"instructorName,omitempty"`
	Price          float64            `bson:"price" json:"price"`
}

type PaymentRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email         string             `bson:"email" json:"email"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Price         float64            `bson:"price" json:"price"`
	Date          time.Time          `bson:"date" json:"date"`
	CartID        string             `bson:"cartId" json:"cartId"`
	ClassID       string             `bson:"classId" json:"classId"`
	ClassName     string             `bson:"className,omitempty" json:"className,omitempty"`
}

// ClassFilter narrows a class listing. Zero values mean no restriction.
type ClassFilter struct {
	Status          ClassStatus
	InstructorEmail string
	SortBy          string
	Descending      bool
	Limit           int64
}

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// CheckoutResult is what a recorded payment reports back to the buyer.
type CheckoutResult struct {
	InsertResult InsertResult `json:"insertResult"`
	DeleteResult DeleteResult `json:"deleteResult"`
	SeatsUpdated bool         `json:"seatsUpdated"`
}

const EventPaymentRecorded = "payment.recorded"

// PaymentRecordedEvent is written to the outbox by a checkout and relayed to
// the message broker.
type PaymentRecordedEvent struct {
	PaymentID     string    `json:"paymentId"`
	Email         string    `json:"email"`
	CartID        string    `json:"cartId"`
	ClassID       string    `json:"classId"`
	TransactionID string    `json:"transactionId"`
	Price         float64   `json:"price"`
	Date          time.Time `json:"date"`
	SeatsUpdated  bool      `json:"seatsUpdated"`
}

// Cache keys of the popular listings, dropped whenever enrollment changes.
const (
	CacheKeyPopularClasses     = "popular:classes"
	CacheKeyPopularInstructors = "popular:instructors"
)

// ValidClassSort reports whether key names a supported class ordering.
func ValidClassSort(key string) bool {
	switch key {
	case "", "price", "enrolled", "seats", "name":
		return true
	}
	return false
}
