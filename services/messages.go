package services

// Client-facing error messages.
const (
	MsgInvalidCredentials = "Invalid email or password"

	MsgNameRequired     = "Name is required"
	MsgNameTooShort     = "Name is too short"
	MsgNameTooLong      = "Name is too long"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Email is invalid"
	MsgPhoneInvalid     = "Phone number is invalid"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgUserNotFound     = "User not found"
	MsgUserExists       = "User with this email or phone already exists"
	MsgInvalidUserID    = "Invalid user ID"

	MsgCustomerRequired     = "Customer ID is required"
	MsgCustomerInvalid      = "Customer ID is invalid"
	MsgGstRequired          = "GST percentage is required"
	MsgGstInvalid           = "GST percentage is invalid"
	MsgItemsRequired        = "At least one invoice item is required"
	MsgItemDescRequired     = "Item description is required"
	MsgItemAmountRequired   = "Item amount is required"
	MsgItemAmountInvalid    = "Item amount must be greater than 0"
	MsgInvoiceIDRequired    = "Invoice ID is required"
	MsgInvoiceIDInvalid     = "Invoice ID is invalid"
	MsgStatusRequired       = "Invoice status is required"
	MsgStatusInvalid        = "Invoice status is invalid"
	MsgInvoiceNotFound      = "Invoice not found"
)
