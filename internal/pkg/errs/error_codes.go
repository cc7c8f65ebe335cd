/*
Package errs provides custom error types and application-level error code constants.

Every code belongs to one failure class: ValidationError (400), Unauthenticated (401),
PermissionDenied (403), NotFound (404), Conflict (409), or an internal failure (5xx).
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrValidationFailed indicates that a decoded payload failed field validation.
	ErrValidationFailed = 1008
)

// 2xxx: Server, Channel, Message and Room Errors
const (
	ErrServerNotFound  = 2101
	ErrChannelNotFound = 2102

	// ErrNotServerOwner indicates that only the owner may perform the operation.
	ErrNotServerOwner = 2103

	// ErrNotServerMember indicates the caller does not belong to the channel's server.
	ErrNotServerMember = 2104

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageEmpty indicates a message with neither content nor attachment.
	ErrMessageEmpty = 2202

	ErrAttachmentKeyInvalid = 2203
	ErrFileSizeTooLarge     = 2204

	// ErrAttachmentsDisabled indicates that no attachment storage is configured.
	ErrAttachmentsDisabled = 2205

	// ErrRoomNotFound indicates a subscription request for a room id that matches nothing.
	ErrRoomNotFound = 2301

	// ErrRoomForbidden indicates the connection's identity may not subscribe to the room.
	ErrRoomForbidden = 2302
)

// 3xxx: User, Session and Friend Errors
const (
	// ErrUnauthorized indicates the action requires a bound identity.
	ErrUnauthorized = 3001

	ErrEmailAlreadyExists = 3002
	ErrInvalidCredentials = 3003
	ErrUserNotFound       = 3004

	// ErrPermissionDenied indicates the caller acts on a record it does not own.
	ErrPermissionDenied = 3005

	ErrCannotFriendSelf      = 3101
	ErrAlreadyFriends        = 3102
	ErrFriendRequestExists   = 3103
	ErrFriendRequestNotFound = 3104
	ErrInvalidFriendAction   = 3105
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates the attachment storage rejected the request.
	ErrFileStorageFailed = 5001
)
