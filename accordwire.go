// Package accord is a thin convenience layer over the lower-level codec
// packages (varint, bitpack, enumcodec, keycodec, routable, segmentedmap,
// message). It exists for callers who want a single configured entry
// point rather than threading a key scheme and boundary comparator
// through every package's free functions by hand; it adds no wire-format
// behavior of its own.
package accord

import (
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/internal/options"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/message"
	"github.com/accordwire/accord/wirebuf"
)

// Codec is the configured entry point: a key scheme plus the segmented-map
// boundary ordering, bound once and reused across every encode/decode
// call a deployment makes.
type Codec struct {
	scheme       keycodec.Scheme
	boundaryLess func(a, b keycodec.RoutingKey) bool
	decoder      *message.Decoder
}

// Option configures a Codec at construction time.
type Option = options.Option[*Codec]

// WithScheme sets the key scheme every routing key and range is framed
// against. Required — New fails without one.
func WithScheme(scheme keycodec.Scheme) Option {
	return options.New(func(c *Codec) error {
		if scheme == nil {
			return errs.ErrNilScheme
		}

		c.scheme = scheme

		return nil
	})
}

// WithBoundaryLess sets the ordering used to validate a segmented map's
// boundary sequence. Required only by operations that carry one
// (BeginRecovery's reply, GetLatestDeps's reply).
func WithBoundaryLess(less func(a, b keycodec.RoutingKey) bool) Option {
	return options.NoError(func(c *Codec) {
		c.boundaryLess = less
	})
}

// New builds a Codec from opts. WithScheme must be among them.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.scheme == nil {
		return nil, errs.ErrNilScheme
	}

	decoderOpts := []message.DecoderOption{message.WithScheme(c.scheme)}
	if c.boundaryLess != nil {
		decoderOpts = append(decoderOpts, message.WithBoundaryLess(c.boundaryLess))
	}

	decoder, err := message.NewDecoder(decoderOpts...)
	if err != nil {
		return nil, err
	}

	c.decoder = decoder

	return c, nil
}

// EncodeAccept writes an Accept request's envelope followed by its body
// into one contiguous frame — the two are always transmitted together,
// and the body's executeAt field is encoded relative to the envelope's
// TxnId, so composing them here saves every caller from re-deriving that
// coupling by hand.
func (c *Codec) EncodeAccept(s wirebuf.Sink, env message.Envelope, req message.AcceptRequest) error {
	if err := env.Write(s, c.scheme); err != nil {
		return err
	}

	req.Write(s)

	return nil
}

// SizeAccept returns the on-wire size EncodeAccept would produce.
func (c *Codec) SizeAccept(env message.Envelope, req message.AcceptRequest) int {
	return env.Size(c.scheme) + req.Size()
}

// DecodeAccept reads an envelope followed by its Accept request body.
func (c *Codec) DecodeAccept(r wirebuf.Source) (message.Envelope, message.AcceptRequest, error) {
	env, err := c.decoder.DecodeEnvelope(r)
	if err != nil {
		return message.Envelope{}, message.AcceptRequest{}, err
	}

	req, err := c.decoder.DecodeAcceptRequest(r, env.TxnID)
	if err != nil {
		return message.Envelope{}, message.AcceptRequest{}, err
	}

	return env, req, nil
}

// EncodeBeginRecovery writes a BeginRecovery request's envelope followed
// by its body, mirroring EncodeAccept's envelope/body coupling.
func (c *Codec) EncodeBeginRecovery(s wirebuf.Sink, env message.Envelope, req message.BeginRecoveryRequest) error {
	if err := env.Write(s, c.scheme); err != nil {
		return err
	}

	return req.Write(s, c.scheme)
}

// SizeBeginRecovery returns the on-wire size EncodeBeginRecovery would
// produce.
func (c *Codec) SizeBeginRecovery(env message.Envelope, req message.BeginRecoveryRequest) int {
	return env.Size(c.scheme) + req.Size(c.scheme)
}

// DecodeBeginRecovery reads an envelope followed by its BeginRecovery
// request body.
func (c *Codec) DecodeBeginRecovery(r wirebuf.Source) (message.Envelope, message.BeginRecoveryRequest, error) {
	env, err := c.decoder.DecodeEnvelope(r)
	if err != nil {
		return message.Envelope{}, message.BeginRecoveryRequest{}, err
	}

	req, err := c.decoder.DecodeBeginRecoveryRequest(r, env.TxnID)
	if err != nil {
		return message.Envelope{}, message.BeginRecoveryRequest{}, err
	}

	return env, req, nil
}

// EncodeInformDurable writes an InformDurable request's envelope followed
// by its body — the body's epoch fields are deltas relative to the
// envelope's WaitForEpoch.
func (c *Codec) EncodeInformDurable(s wirebuf.Sink, env message.Envelope, body message.InformDurable) error {
	if err := env.Write(s, c.scheme); err != nil {
		return err
	}

	body.Write(s)

	return nil
}

// SizeInformDurable returns the on-wire size EncodeInformDurable would
// produce.
func (c *Codec) SizeInformDurable(env message.Envelope, body message.InformDurable) int {
	return env.Size(c.scheme) + body.Size()
}

// DecodeInformDurable reads an envelope followed by its InformDurable body.
func (c *Codec) DecodeInformDurable(r wirebuf.Source) (message.Envelope, message.InformDurable, error) {
	env, err := c.decoder.DecodeEnvelope(r)
	if err != nil {
		return message.Envelope{}, message.InformDurable{}, err
	}

	body, err := c.decoder.DecodeInformDurable(r, int64(env.WaitForEpoch))
	if err != nil {
		return message.Envelope{}, message.InformDurable{}, err
	}

	return env, body, nil
}

// DecodeCheckStatusReply reads a CheckStatus reply using the Codec's
// bound scheme.
func (c *Codec) DecodeCheckStatusReply(r wirebuf.Source) (message.CheckStatusReply, error) {
	return c.decoder.DecodeCheckStatusReply(r)
}

// DecodeAcceptReply reads an Accept reply using the Codec's bound scheme.
func (c *Codec) DecodeAcceptReply(r wirebuf.Source) (message.AcceptReply, error) {
	return c.decoder.DecodeAcceptReply(r)
}

// DecodeBeginRecoveryReply reads a BeginRecovery reply. Requires
// WithBoundaryLess to have been set.
func (c *Codec) DecodeBeginRecoveryReply(r wirebuf.Source) (message.BeginRecoveryReply, error) {
	return c.decoder.DecodeBeginRecoveryReply(r)
}

// DecodeGetLatestDepsReply reads a GetLatestDeps reply. Requires
// WithBoundaryLess to have been set.
func (c *Codec) DecodeGetLatestDepsReply(r wirebuf.Source) (message.GetLatestDepsReply, error) {
	return c.decoder.DecodeGetLatestDepsReply(r)
}

// DecodeGetEphemeralReadDepsReply reads a GetEphemeralReadDeps reply.
func (c *Codec) DecodeGetEphemeralReadDepsReply(r wirebuf.Source) (message.GetEphemeralReadDepsReply, error) {
	return c.decoder.DecodeGetEphemeralReadDepsReply(r)
}
