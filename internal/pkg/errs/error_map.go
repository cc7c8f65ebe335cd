package errs

import "net/http"

// errorMap stores the CustomError template of every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrValidationFailed:     {Code: ErrValidationFailed, Message: "Invalid field: %s.", Status: http.StatusBadRequest},

	// 2xxx: Server, Channel, Message and Room Errors
	ErrServerNotFound:        {Code: ErrServerNotFound, Message: "Server not found.", Status: http.StatusNotFound},
	ErrChannelNotFound:       {Code: ErrChannelNotFound, Message: "Channel not found.", Status: http.StatusNotFound},
	ErrNotServerOwner:        {Code: ErrNotServerOwner, Message: "Permission denied.", Status: http.StatusForbidden},
	ErrNotServerMember:       {Code: ErrNotServerMember, Message: "You are not a member of this server.", Status: http.StatusForbidden},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message is empty.", Status: http.StatusBadRequest},
	ErrAttachmentKeyInvalid:  {Code: ErrAttachmentKeyInvalid, Message: "Invalid attachment.", Status: http.StatusBadRequest},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},
	ErrAttachmentsDisabled:   {Code: ErrAttachmentsDisabled, Message: "Attachments are not available.", Status: http.StatusNotFound},
	ErrRoomNotFound:          {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrRoomForbidden:         {Code: ErrRoomForbidden, Message: "You cannot join this room.", Status: http.StatusForbidden},

	// 3xxx: User, Session and Friend Errors
	ErrUnauthorized:          {Code: ErrUnauthorized, Message: "Not logged in.", Status: http.StatusUnauthorized},
	ErrEmailAlreadyExists:    {Code: ErrEmailAlreadyExists, Message: "Email already exists.", Status: http.StatusConflict},
	ErrInvalidCredentials:    {Code: ErrInvalidCredentials, Message: "Invalid email or password.", Status: http.StatusUnauthorized},
	ErrUserNotFound:          {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrPermissionDenied:      {Code: ErrPermissionDenied, Message: "Permission denied.", Status: http.StatusForbidden},
	ErrCannotFriendSelf:      {Code: ErrCannotFriendSelf, Message: "Cannot send friend request to yourself.", Status: http.StatusBadRequest},
	ErrAlreadyFriends:        {Code: ErrAlreadyFriends, Message: "Already friends.", Status: http.StatusConflict},
	ErrFriendRequestExists:   {Code: ErrFriendRequestExists, Message: "Friend request already sent.", Status: http.StatusConflict},
	ErrFriendRequestNotFound: {Code: ErrFriendRequestNotFound, Message: "Friend request not found.", Status: http.StatusNotFound},
	ErrInvalidFriendAction:   {Code: ErrInvalidFriendAction, Message: "Invalid action.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File storage failed. Please try again.", Status: http.StatusBadGateway},
}
