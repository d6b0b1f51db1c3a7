package service

// SubscriptionChecker decides whether a user may take part in a contest
type SubscriptionChecker interface {
	IsSubscribed(userID int64, channelRef string) (bool, error)
}

// StubSubscriptionChecker treats every user as subscribed
type StubSubscriptionChecker struct{}

// NewStubSubscriptionChecker creates a checker that always allows participation
func NewStubSubscriptionChecker() *StubSubscriptionChecker {
	return &StubSubscriptionChecker{}
}

// IsSubscribed always returns true
func (StubSubscriptionChecker) IsSubscribed(userID int64, channelRef string) (bool, error) {
	return true, nil
}
