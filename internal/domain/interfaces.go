package domain

import (
	"context"
	"time"

	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Clock interface {
	Now() time.Time
}

type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int64, status models.Status) error
	GetBookingsByBooker(ctx context.Context, bookerID int64, status *models.Status, page models.Page) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64, status *models.Status, page models.Page) ([]*models.Booking, error)
	GetBookingsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID int64, before time.Time) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)

	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	GetRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
}

type SyncQueue interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int, now time.Time) ([]models.SyncTask, error)
	ClaimSyncTask(ctx context.Context, id int64) (bool, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// GatewayStore keeps short-lived per-caller state at the gateway.
type GatewayStore interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
	GetIdempotent(ctx context.Context, key string) (*models.StoredResponse, error)
	SaveIdempotent(ctx context.Context, key string, resp *models.StoredResponse, ttl time.Duration) error
	// ReserveIdempotent marks key as in flight; false means another request holds it.
	ReserveIdempotent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseIdempotent(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (*models.User, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, item *models.Item, ownerID int64) (*models.Item, error)
	GetItemForViewer(ctx context.Context, itemID, viewerID int64) (*models.ItemDetails, error)
	ListOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]*models.ItemDetails, error)
	UpdateItem(ctx context.Context, itemID, ownerID int64, patch models.ItemPatch) (*models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, input models.BookingInput, bookerID int64) (*models.Booking, error)
	ApproveBooking(ctx context.Context, bookingID, userID int64, approved bool) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	ListByUser(ctx context.Context, userID int64, state models.State, page models.Page) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state models.State, page models.Page) ([]*models.Booking, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, description string, requesterID int64) (*models.ItemRequest, error)
	GetRequest(ctx context.Context, requestID, viewerID int64) (*models.ItemRequest, error)
	ListOwnRequests(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	ListOtherRequests(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
}

type BookingExporter interface {
	ExportOwnerBookings(ctx context.Context, ownerID int64, state models.State) ([]byte, error)
}
