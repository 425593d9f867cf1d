package directory

import "context"

// Client is the handle-directory surface the core calls against but
// never implements (spec.md §6.4). Every method maps to exactly one
// directory HTTP endpoint.
type Client interface {
	ResolveHandle(ctx context.Context, handle string) (*IdentityRecord, error)
	ResolveIdentity(ctx context.Context, publicKeyHex string) (*IdentityRecord, error)
	CheckAlias(ctx context.Context, handle string) (*AliasAvailability, error)
	ReserveAlias(ctx context.Context, handle string) error
	ClaimAlias(ctx context.Context, handle string, claim AliasClaim) error
	PublishRecord(ctx context.Context, publicKeyHex string, record IdentityRecord) error
	PostBreadcrumb(ctx context.Context, crumb BreadcrumbWire) error
	ListBreadcrumbs(ctx context.Context, publicKeyHex string) ([]BreadcrumbWire, error)
	PostMessage(ctx context.Context, envelope any) error
	ListPendingMessages(ctx context.Context, publicKeyHex string) ([]PendingMessageWire, error)
}
