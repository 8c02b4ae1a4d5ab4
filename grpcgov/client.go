package grpcgov

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/multisig/action"
	"xdao.co/multisig/keys"
	"xdao.co/multisig/model"
)

// Client is a typed governance client. It signs every write request with the
// configured Signer before sending it.
type Client struct {
	cc     *grpc.ClientConn
	client GovernanceClient

	// Signer authenticates write methods. Read methods work without one.
	Signer keys.Signer

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, signer keys.Signer, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewGovernanceClient(cc), Signer: signer}, nil
}

// NewClient wraps an existing connection, mainly for tests.
func NewClient(cc *grpc.ClientConn, signer keys.Signer) *Client {
	return &Client{cc: cc, client: NewGovernanceClient(cc), Signer: signer}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) signedBody(v interface{}) (*wrapperspb.BytesValue, error) {
	if c.Signer == nil {
		return nil, model.NewError(model.ErrInvalidRequest, "no signer configured")
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	sig, err := c.Signer.Sign(body)
	if err != nil {
		return nil, err
	}
	req := model.SignedRequest{
		Caller:    c.Signer.Address().String(),
		Scheme:    c.Signer.Scheme(),
		PublicKey: c.Signer.PublicKey(),
		Signature: sig,
		Body:      body,
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bytes(raw), nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

// Propose submits a new action and returns its id.
func (c *Client) Propose(payload action.Payload) (uint64, error) {
	in, err := c.signedBody(model.ProposeBody{
		Action:   action.Envelope{Payload: payload},
		IssuedAt: time.Now().Unix(),
	})
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Propose(ctx, in)
	if err != nil {
		return 0, mapRPC(err)
	}
	var resp model.ProposeResponse
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return 0, err
	}
	return resp.ActionID, nil
}

// Sign endorses a pending action and returns its updated view.
func (c *Client) Sign(id uint64) (model.ActionResponse, error) {
	return c.actionWrite(id, c.client.Sign)
}

// Unsign withdraws the caller's endorsement and returns the updated view.
func (c *Client) Unsign(id uint64) (model.ActionResponse, error) {
	return c.actionWrite(id, c.client.Unsign)
}

func (c *Client) actionWrite(id uint64, call func(context.Context, *wrapperspb.BytesValue, ...grpc.CallOption) (*wrapperspb.BytesValue, error)) (model.ActionResponse, error) {
	var resp model.ActionResponse
	in, err := c.signedBody(model.ActionIDBody{ActionID: id, IssuedAt: time.Now().Unix()})
	if err != nil {
		return resp, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := call(ctx, in)
	if err != nil {
		return resp, mapRPC(err)
	}
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Discard drops a pending action that has not reached quorum.
func (c *Client) Discard(id uint64) error {
	in, err := c.signedBody(model.ActionIDBody{ActionID: id, IssuedAt: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	if _, err := c.client.Discard(ctx, in); err != nil {
		return mapRPC(err)
	}
	return nil
}

// Perform executes a ready action.
func (c *Client) Perform(id uint64) (model.PerformResponse, error) {
	var resp model.PerformResponse
	in, err := c.signedBody(model.ActionIDBody{ActionID: id, IssuedAt: time.Now().Unix()})
	if err != nil {
		return resp, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Perform(ctx, in)
	if err != nil {
		return resp, mapRPC(err)
	}
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Status returns the account's governance state.
func (c *Client) Status() (model.StatusResponse, error) {
	var resp model.StatusResponse
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Status(ctx, wrapperspb.Bytes(nil))
	if err != nil {
		return resp, mapRPC(err)
	}
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Action returns one pending action's view.
func (c *Client) Action(id uint64) (model.ActionResponse, error) {
	var resp model.ActionResponse
	body, err := json.Marshal(model.ActionIDBody{ActionID: id})
	if err != nil {
		return resp, err
	}
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Action(ctx, wrapperspb.Bytes(body))
	if err != nil {
		return resp, mapRPC(err)
	}
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Snapshot persists the engine state to the daemon's snapshot store and
// returns the snapshot CID.
func (c *Client) Snapshot() (string, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Snapshot(ctx, wrapperspb.Bytes(nil))
	if err != nil {
		return "", mapRPC(err)
	}
	var resp model.SnapshotResponse
	if err := json.Unmarshal(reply.GetValue(), &resp); err != nil {
		return "", err
	}
	return resp.CID, nil
}
