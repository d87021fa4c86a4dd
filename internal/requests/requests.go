package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PolarWolf314/credshare/internal/audit"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	logger "github.com/PolarWolf314/credshare/internal/logging"
	"github.com/PolarWolf314/credshare/internal/shares"
	"github.com/PolarWolf314/credshare/internal/store"
	"github.com/PolarWolf314/credshare/internal/vault"
)

// Status is the lifecycle state of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts pending, approved or rejected in any case.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown request status %q", s)
	}
}

// Decision is the owner's answer to a request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts approve or reject in any case.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q (use approve or reject)", kerrors.ErrInvalidDecision, s)
	}
}

// Role selects which side of a request a listing is for.
type Role string

const (
	RoleRequester Role = "requester"
	RoleOwner     Role = "owner"
)

// Request is one access request.
type Request struct {
	ID                  string
	SecretTitle         string
	RequesterID         string
	OwnerID             string
	RequestedPermission shares.Permission
	Message             string
	Status              Status
	ShareID             string
	CreatedAt           time.Time
	RespondedAt         *time.Time
}

// Response is the owner's decision. On approve, an empty Permission keeps
// the requested one and an empty SecretID selects the vault secret whose
// title matches the request.
type Response struct {
	Decision   Decision
	Permission shares.Permission
	TTL        time.Duration
	SecretID   string
}

// Outcome reports how a request was resolved.
type Outcome struct {
	RequestID string
	Status    Status
	ShareID   string
}

// RequestFilter selects requests for ListRequests. A zero Status matches all.
type RequestFilter struct {
	Role   Role
	Status Status
}

// Workflow creates and resolves requests for the engine's caller.
type Workflow struct {
	engine *shares.Engine
	store  *store.Store
	dir    shares.Directory
	vault  shares.Vault
	log    logger.Logger
}

// NewWorkflow returns a Workflow acting as engine's caller.
func NewWorkflow(engine *shares.Engine, s *store.Store, dir shares.Directory, v shares.Vault, log logger.Logger) *Workflow {
	return &Workflow{engine: engine, store: s, dir: dir, vault: v, log: log}
}

func (w *Workflow) requireSession() error {
	if w.vault == nil || !w.vault.IsSessionActive() {
		return fmt.Errorf("%w: vault session is not active", kerrors.ErrUnauthorized)
	}
	return nil
}

// CreateRequest asks the owner for a secret by title.
func (w *Workflow) CreateRequest(ctx context.Context, ownerIdentifier, secretTitle string, permission shares.Permission, message string) (string, error) {
	if err := w.requireSession(); err != nil {
		return "", err
	}
	if _, err := shares.ParsePermission(string(permission)); err != nil {
		return "", err
	}
	secretTitle = strings.TrimSpace(secretTitle)
	if secretTitle == "" {
		return "", fmt.Errorf("secret title cannot be empty")
	}

	owner, err := w.dir.Resolve(ctx, ownerIdentifier)
	if err != nil {
		return "", err
	}
	callerID := w.engine.CallerID()
	if owner.UserID == callerID {
		return "", kerrors.ErrSelfRequestRejected
	}

	now := w.engine.Now()
	row := &store.ShareRequest{
		RequestID:           uuid.NewString(),
		SecretTitle:         secretTitle,
		RequesterID:         callerID,
		OwnerID:             owner.UserID,
		RequestedPermission: string(permission),
		Message:             message,
		Status:              string(StatusPending),
		CreatedAt:           now,
	}

	err = w.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.InsertRequest(ctx, row); err != nil {
			return fmt.Errorf("failed to store request: %w", err)
		}
		_, err := audit.Append(ctx, tx, audit.Entry{
			Timestamp: now,
			Actor:     callerID,
			Action:    audit.ActionRequestCreated,
			RequestID: row.RequestID,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	w.log.Infof("Requested %q from %s", secretTitle, owner.UserID)
	return row.RequestID, nil
}

// RespondRequest approves or rejects a pending request the caller owns.
// Approval creates the share and resolves the request in one transaction.
// A request resolves exactly once; later calls fail with
// ErrRequestAlreadyResolved.
func (w *Workflow) RespondRequest(ctx context.Context, requestID string, resp Response) (*Outcome, error) {
	if err := w.requireSession(); err != nil {
		return nil, err
	}
	if _, err := ParseDecision(string(resp.Decision)); err != nil {
		return nil, err
	}

	req, err := w.store.GetRequest(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrRequestNotFound, requestID)
	}
	if err != nil {
		return nil, err
	}
	callerID := w.engine.CallerID()
	if req.OwnerID != callerID {
		return nil, fmt.Errorf("%w: only the owner can respond to a request", kerrors.ErrUnauthorized)
	}
	if Status(req.Status) != StatusPending {
		return nil, kerrors.ErrRequestAlreadyResolved
	}

	switch resp.Decision {
	case DecisionApprove:
		return w.approve(ctx, req, resp)
	case DecisionReject:
		return w.reject(ctx, req)
	default:
		return nil, kerrors.ErrInvalidDecision
	}
}

func (w *Workflow) approve(ctx context.Context, req *store.ShareRequest, resp Response) (*Outcome, error) {
	permission := resp.Permission
	if permission == "" {
		permission = shares.Permission(req.RequestedPermission)
	}

	secretID := resp.SecretID
	if secretID == "" {
		list, err := w.vault.ListSecrets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list vault secrets: %w", err)
		}
		secret, err := vault.FindByTitle(list, req.SecretTitle)
		if err != nil {
			return nil, err
		}
		secretID = secret.ID
	}

	// Encryption happens before the transaction so the row lock is held briefly.
	prepared, err := w.engine.PrepareShare(ctx, secretID, req.RequesterID, permission, resp.TTL)
	if err != nil {
		return nil, err
	}

	now := w.engine.Now()
	err = w.store.WithTx(ctx, func(tx *store.Store) error {
		if err := lockPending(ctx, tx, req.RequestID); err != nil {
			return err
		}
		if err := w.engine.InsertPrepared(ctx, tx, prepared); err != nil {
			return err
		}
		ok, err := tx.ResolveRequest(ctx, req.RequestID, string(StatusPending), string(StatusApproved), prepared.ShareID(), now)
		if err != nil {
			return err
		}
		if !ok {
			return kerrors.ErrRequestAlreadyResolved
		}
		_, err = audit.Append(ctx, tx, audit.Entry{
			Timestamp: now,
			Actor:     w.engine.CallerID(),
			Action:    audit.ActionRequestApproved,
			RequestID: req.RequestID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	w.log.Infof("Approved request %s as share %s", req.RequestID, prepared.ShareID())
	return &Outcome{RequestID: req.RequestID, Status: StatusApproved, ShareID: prepared.ShareID()}, nil
}

func (w *Workflow) reject(ctx context.Context, req *store.ShareRequest) (*Outcome, error) {
	now := w.engine.Now()
	err := w.store.WithTx(ctx, func(tx *store.Store) error {
		if err := lockPending(ctx, tx, req.RequestID); err != nil {
			return err
		}
		ok, err := tx.ResolveRequest(ctx, req.RequestID, string(StatusPending), string(StatusRejected), "", now)
		if err != nil {
			return err
		}
		if !ok {
			return kerrors.ErrRequestAlreadyResolved
		}
		_, err = audit.Append(ctx, tx, audit.Entry{
			Timestamp: now,
			Actor:     w.engine.CallerID(),
			Action:    audit.ActionRequestRejected,
			RequestID: req.RequestID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	w.log.Infof("Rejected request %s", req.RequestID)
	return &Outcome{RequestID: req.RequestID, Status: StatusRejected}, nil
}

func lockPending(ctx context.Context, tx *store.Store, requestID string) error {
	locked, err := tx.LockRequest(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", kerrors.ErrRequestNotFound, requestID)
	}
	if err != nil {
		return err
	}
	if Status(locked.Status) != StatusPending {
		return kerrors.ErrRequestAlreadyResolved
	}
	return nil
}

// ListRequests returns the caller's requests as requester or owner, newest first.
func (w *Workflow) ListRequests(ctx context.Context, f RequestFilter) ([]Request, error) {
	q := store.RequestQuery{Status: string(f.Status)}
	switch f.Role {
	case RoleRequester:
		q.RequesterID = w.engine.CallerID()
	case RoleOwner:
		q.OwnerID = w.engine.CallerID()
	default:
		return nil, fmt.Errorf("unknown role %q (use requester or owner)", f.Role)
	}

	rows, err := w.store.ListRequests(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	out := make([]Request, 0, len(rows))
	for _, r := range rows {
		out = append(out, Request{
			ID:                  r.RequestID,
			SecretTitle:         r.SecretTitle,
			RequesterID:         r.RequesterID,
			OwnerID:             r.OwnerID,
			RequestedPermission: shares.Permission(r.RequestedPermission),
			Message:             r.Message,
			Status:              Status(r.Status),
			ShareID:             r.ShareID,
			CreatedAt:           r.CreatedAt,
			RespondedAt:         r.RespondedAt,
		})
	}
	return out, nil
}
