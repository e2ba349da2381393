package shared

// TransactionKind defines the balance-affecting events recorded in the log
type TransactionKind string

const (
	TransactionKindPurchase   TransactionKind = "PURCHASE"
	TransactionKindRedemption TransactionKind = "REDEMPTION"
	TransactionKindPayout     TransactionKind = "PAYOUT"
)

// TransactionStatus defines the terminal states of a logged transaction
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// OwnerKind distinguishes member-side and venue-side balances
type OwnerKind string

const (
	OwnerKindMember OwnerKind = "MEMBER"
	OwnerKindVenue  OwnerKind = "VENUE"
)

// FailureReason defines why a coin operation was rejected
type FailureReason string

const (
	FailureReasonNotEligible              FailureReason = "NOT_ELIGIBLE"
	FailureReasonInsufficientBalance      FailureReason = "INSUFFICIENT_BALANCE"
	FailureReasonInsufficientVenueBalance FailureReason = "INSUFFICIENT_VENUE_BALANCE"
	FailureReasonAlreadyRedeemedToday     FailureReason = "ALREADY_REDEEMED_TODAY"
	FailureReasonUnknownError             FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
