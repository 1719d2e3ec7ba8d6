package enums

// ItemEvent names a catalog change that fans out to the item's watchers.
type ItemEvent string

const (
	ItemEventUpdated   ItemEvent = "updated"
	ItemEventPurchased ItemEvent = "purchased"
)

// String implements fmt.Stringer.
func (e ItemEvent) String() string {
	return string(e)
}

// NotificationKind distinguishes watcher fan-out from seller sale notices.
type NotificationKind string

const (
	NotificationKindWatcher NotificationKind = "watcher"
	NotificationKindSeller  NotificationKind = "seller"
)
