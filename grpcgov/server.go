package grpcgov

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/multisig/action"
	"xdao.co/multisig/engine"
	"xdao.co/multisig/identity"
	"xdao.co/multisig/keys"
	"xdao.co/multisig/model"
	"xdao.co/multisig/storage"
)

// defaultRequestAge bounds how far a signed request's issue time may sit
// from the server clock, in either direction.
const defaultRequestAge = 5 * time.Minute

// Server exposes a governance engine over the Governance gRPC service.
//
// Write methods authenticate the caller from the request envelope alone: the
// signature must verify against the embedded public key, and the claimed
// caller address must equal the address derived from that key. The signed
// body carries its issue time; requests outside the freshness window are
// rejected, so a captured envelope cannot be replayed later. The engine's
// own role checks then decide whether the caller may act.
type Server struct {
	UnimplementedGovernanceServer

	Engine *engine.Engine

	// Snapshots, when set, enables the Snapshot RPC.
	Snapshots storage.CAS

	// MaxRequestAge overrides the freshness window. Zero means the default.
	MaxRequestAge time.Duration

	// Now overrides the clock used for the freshness check.
	Now func() time.Time
}

func (s *Server) ready() error {
	if s == nil || s.Engine == nil {
		return status.Error(codes.FailedPrecondition, "missing engine")
	}
	return nil
}

func (s *Server) authenticate(raw []byte) (identity.Address, []byte, error) {
	var req model.SignedRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return identity.Address{}, nil, badRequest(model.ErrInvalidRequest, "malformed signed request")
	}
	addr, err := keys.Verify(req.Scheme, req.PublicKey, req.Body, req.Signature)
	if err != nil {
		return identity.Address{}, nil, badRequest(model.ErrBadSignature, err.Error())
	}
	caller, err := identity.Parse(req.Caller)
	if err != nil {
		return identity.Address{}, nil, badRequest(model.ErrInvalidRequest, "malformed caller address")
	}
	if caller != addr {
		return identity.Address{}, nil, badRequest(model.ErrBadSignature, "caller does not match public key")
	}
	if err := s.checkFreshness(req.Body); err != nil {
		return identity.Address{}, nil, err
	}
	return addr, req.Body, nil
}

// checkFreshness rejects signed bodies whose issue time falls outside the
// window. The issue time is inside the signed bytes, so an attacker cannot
// refresh a captured request without invalidating its signature.
func (s *Server) checkFreshness(body []byte) error {
	var stamp struct {
		IssuedAt int64 `json:"issuedAt"`
	}
	if err := json.Unmarshal(body, &stamp); err != nil || stamp.IssuedAt == 0 {
		return badRequest(model.ErrStaleRequest, "signed body carries no issue time")
	}
	window := s.MaxRequestAge
	if window <= 0 {
		window = defaultRequestAge
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	drift := now.Unix() - stamp.IssuedAt
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(window/time.Second) {
		return badRequest(model.ErrStaleRequest, "request issue time outside the accepted window")
	}
	return nil
}

func respond(v interface{}) (*wrapperspb.BytesValue, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, string(model.ErrInternal)+": response encoding failed")
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Propose(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, body, err := s.authenticate(in.GetValue())
	if err != nil {
		return nil, err
	}
	var req model.ProposeBody
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, badRequest(model.ErrInvalidRequest, "malformed propose body")
	}
	id, err := s.Engine.Propose(caller, req.Action.Payload)
	if err != nil {
		return nil, mapErr(err)
	}
	return respond(model.ProposeResponse{ActionID: id})
}

func (s *Server) Sign(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, body, err := s.authenticate(in.GetValue())
	if err != nil {
		return nil, err
	}
	id, err := decodeActionID(body)
	if err != nil {
		return nil, err
	}
	if err := s.Engine.Sign(caller, id); err != nil {
		return nil, mapErr(err)
	}
	return s.actionResponse(id)
}

func (s *Server) Unsign(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, body, err := s.authenticate(in.GetValue())
	if err != nil {
		return nil, err
	}
	id, err := decodeActionID(body)
	if err != nil {
		return nil, err
	}
	if err := s.Engine.Unsign(caller, id); err != nil {
		return nil, mapErr(err)
	}
	return s.actionResponse(id)
}

func (s *Server) Discard(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, body, err := s.authenticate(in.GetValue())
	if err != nil {
		return nil, err
	}
	id, err := decodeActionID(body)
	if err != nil {
		return nil, err
	}
	if err := s.Engine.Discard(caller, id); err != nil {
		return nil, mapErr(err)
	}
	return respond(model.ActionIDBody{ActionID: id})
}

func (s *Server) Perform(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, body, err := s.authenticate(in.GetValue())
	if err != nil {
		return nil, err
	}
	id, err := decodeActionID(body)
	if err != nil {
		return nil, err
	}
	out, err := s.Engine.Perform(caller, id)
	if err != nil {
		return nil, mapErr(err)
	}
	resp := model.PerformResponse{ActionID: out.ActionID, Kind: string(out.Kind)}
	if !out.NewAddress.IsZero() {
		resp.NewAddress = out.NewAddress.String()
	}
	if out.CallErr != nil {
		resp.CallError = out.CallErr.Error()
	}
	return respond(resp)
}

func (s *Server) Status(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	_ = in
	if err := s.ready(); err != nil {
		return nil, err
	}
	resp := model.StatusResponse{
		Quorum:       s.Engine.Quorum(),
		BoardMembers: addressStrings(s.Engine.BoardMembers()),
		Proposers:    addressStrings(s.Engine.Proposers()),
	}
	for _, id := range s.Engine.PendingActionIDs() {
		info, err := s.Engine.Action(id)
		if err != nil {
			// Raced with a perform/discard; skip.
			continue
		}
		resp.Pending = append(resp.Pending, s.summary(info))
	}
	return respond(resp)
}

func (s *Server) Action(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if err := s.ready(); err != nil {
		return nil, err
	}
	id, err := decodeActionID(in.GetValue())
	if err != nil {
		return nil, err
	}
	return s.actionResponse(id)
}

func (s *Server) Snapshot(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	_ = in
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.Snapshots == nil {
		return nil, status.Error(codes.FailedPrecondition, "snapshot store not configured")
	}
	id, err := s.Engine.SaveSnapshot(s.Snapshots)
	if err != nil {
		return nil, mapErr(err)
	}
	return respond(model.SnapshotResponse{CID: id.String()})
}

func (s *Server) actionResponse(id uint64) (*wrapperspb.BytesValue, error) {
	info, err := s.Engine.Action(id)
	if err != nil {
		return nil, mapErr(err)
	}
	return respond(model.ActionResponse{
		ActionSummary: s.summary(info),
		Action:        action.Envelope{Payload: info.Payload},
	})
}

func (s *Server) summary(info engine.ActionInfo) model.ActionSummary {
	return model.ActionSummary{
		ID:         info.ID,
		Kind:       string(info.Payload.Kind()),
		Proposer:   info.Proposer.String(),
		CreatedAt:  info.CreatedAt,
		Signers:    addressStrings(info.Signers),
		Signatures: uint32(info.EffectiveSignatures),
		Ready:      uint32(info.EffectiveSignatures) >= s.Engine.Quorum(),
	}
}

func decodeActionID(body []byte) (uint64, error) {
	var req model.ActionIDBody
	if err := json.Unmarshal(body, &req); err != nil {
		return 0, badRequest(model.ErrInvalidRequest, "malformed action id body")
	}
	return req.ActionID, nil
}

func addressStrings(addrs []identity.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return out
}
