package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/credshare/internal/requests"
	"github.com/PolarWolf314/credshare/internal/shares"
)

// RequestOptions configures the request create workflow.
type RequestOptions struct {
	Common

	// Owner is the email or user id of the secret's owner.
	Owner string

	// Title names the secret being asked for.
	Title string

	// Permission defaults to read.
	Permission string

	Message string
}

// Request asks another user to share a secret. It returns the request id.
func Request(ctx context.Context, opts RequestOptions) (string, error) {
	perm := shares.PermissionRead
	if opts.Permission != "" {
		p, err := shares.ParsePermission(opts.Permission)
		if err != nil {
			return "", err
		}
		perm = p
	}

	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return "", err
	}
	defer s.Close()

	return s.requests.CreateRequest(ctx, opts.Owner, opts.Title, perm, strings.TrimSpace(opts.Message))
}

// RespondOptions configures the request respond workflow.
type RespondOptions struct {
	Common

	RequestID string

	// Decision is approve or reject.
	Decision string

	// Permission overrides the requested permission on approval.
	Permission string

	// Secret is a vault secret id or title to share on approval. Empty
	// picks the secret whose title matches the request.
	Secret string

	TTL      string
	NoExpiry bool
}

// Respond approves or rejects a pending request addressed to the caller.
func Respond(ctx context.Context, opts RespondOptions) (*requests.Outcome, error) {
	decision, err := requests.ParseDecision(opts.Decision)
	if err != nil {
		return nil, err
	}
	resp := requests.Response{Decision: decision}
	if opts.Permission != "" {
		if resp.Permission, err = shares.ParsePermission(opts.Permission); err != nil {
			return nil, err
		}
	}

	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if decision == requests.DecisionApprove {
		if resp.TTL, err = s.resolveTTL(opts.TTL, opts.NoExpiry); err != nil {
			return nil, err
		}
		if opts.Secret != "" {
			secret, err := s.findSecret(ctx, opts.Secret)
			if err != nil {
				return nil, err
			}
			resp.SecretID = secret.ID
		}
	}

	return s.requests.RespondRequest(ctx, opts.RequestID, resp)
}

// RequestsOptions configures the request list workflow.
type RequestsOptions struct {
	Common

	// Role is requester (sent) or owner (received). Defaults to owner.
	Role string

	// Status filters by request status. Empty lists all.
	Status string
}

// ListedRequest is a request with both parties rendered for display.
type ListedRequest struct {
	requests.Request
	Requester string
	Owner     string
}

// Requests lists the caller's sent or received requests, newest first.
func Requests(ctx context.Context, opts RequestsOptions) ([]ListedRequest, error) {
	filter := requests.RequestFilter{Role: requests.RoleOwner}
	switch strings.ToLower(strings.TrimSpace(opts.Role)) {
	case "", string(requests.RoleOwner), "received":
	case string(requests.RoleRequester), "sent":
		filter.Role = requests.RoleRequester
	default:
		return nil, fmt.Errorf("unknown role %q (use requester or owner)", opts.Role)
	}
	if opts.Status != "" {
		st, err := requests.ParseStatus(opts.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	list, err := s.requests.ListRequests(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ListedRequest, 0, len(list))
	for _, r := range list {
		out = append(out, ListedRequest{
			Request:   r,
			Requester: s.describeUser(ctx, r.RequesterID),
			Owner:     s.describeUser(ctx, r.OwnerID),
		})
	}
	return out, nil
}
