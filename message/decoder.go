package message

import (
	"github.com/accordwire/accord/domain"
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/internal/options"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/wirebuf"
)

// Decoder binds the per-deployment parameters every message-body decode
// needs — the key scheme, and the boundary ordering a segmented map's
// strictly-increasing check is measured against — so call sites don't
// thread both through every Read call individually.
type Decoder struct {
	scheme       keycodec.Scheme
	boundaryLess func(a, b keycodec.RoutingKey) bool
}

// DecoderOption configures a Decoder at construction time.
type DecoderOption = options.Option[*Decoder]

// WithScheme sets the key scheme used to frame routing keys and ranges.
// Required — NewDecoder fails without one.
func WithScheme(scheme keycodec.Scheme) DecoderOption {
	return options.New(func(d *Decoder) error {
		if scheme == nil {
			return errs.ErrNilScheme
		}

		d.scheme = scheme

		return nil
	})
}

// WithBoundaryLess sets the ordering used to validate a segmented map's
// boundary sequence. Required only by the methods that decode one
// (DecodeBeginRecoveryReply, DecodeGetLatestDepsReply).
func WithBoundaryLess(less func(a, b keycodec.RoutingKey) bool) DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.boundaryLess = less
	})
}

// NewDecoder builds a Decoder from opts. WithScheme must be among them.
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	d := &Decoder{}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	if d.scheme == nil {
		return nil, errs.ErrNilScheme
	}

	return d, nil
}

func (d *Decoder) requireBoundaryLess() error {
	if d.boundaryLess == nil {
		return errs.ErrNilBoundaryLess
	}

	return nil
}

// DecodeEnvelope reads a request envelope.
func (d *Decoder) DecodeEnvelope(r wirebuf.Source) (Envelope, error) {
	return ReadEnvelope(r, d.scheme)
}

// DecodeAcceptRequest reads an Accept request body.
func (d *Decoder) DecodeAcceptRequest(r wirebuf.Source, txnID domain.TxnId) (AcceptRequest, error) {
	return ReadAcceptRequest(r, txnID)
}

// DecodeAcceptReply reads an Accept reply.
func (d *Decoder) DecodeAcceptReply(r wirebuf.Source) (AcceptReply, error) {
	return ReadAcceptReply(r, d.scheme)
}

// DecodeNotAccept reads a NotAccept payload.
func (d *Decoder) DecodeNotAccept(r wirebuf.Source) (NotAccept, error) {
	return ReadNotAccept(r, d.scheme)
}

// DecodeCheckStatusReply reads a CheckStatus reply.
func (d *Decoder) DecodeCheckStatusReply(r wirebuf.Source) (CheckStatusReply, error) {
	return ReadCheckStatusReply(r, d.scheme)
}

// DecodeBeginRecoveryRequest reads a BeginRecovery request body.
func (d *Decoder) DecodeBeginRecoveryRequest(r wirebuf.Source, txnID domain.TxnId) (BeginRecoveryRequest, error) {
	return ReadBeginRecoveryRequest(r, d.scheme, txnID)
}

// DecodeBeginRecoveryReply reads a BeginRecovery reply.
func (d *Decoder) DecodeBeginRecoveryReply(r wirebuf.Source) (BeginRecoveryReply, error) {
	if err := d.requireBoundaryLess(); err != nil {
		return BeginRecoveryReply{}, err
	}

	return ReadBeginRecoveryReply(r, d.scheme, d.boundaryLess)
}

// DecodeInformDurable reads an InformDurable body. waitForEpoch comes from
// the enclosing envelope.
func (d *Decoder) DecodeInformDurable(r wirebuf.Source, waitForEpoch int64) (InformDurable, error) {
	return ReadInformDurable(r, waitForEpoch)
}

// DecodeGetLatestDepsReply reads a GetLatestDeps reply.
func (d *Decoder) DecodeGetLatestDepsReply(r wirebuf.Source) (GetLatestDepsReply, error) {
	if err := d.requireBoundaryLess(); err != nil {
		return GetLatestDepsReply{}, err
	}

	return ReadGetLatestDepsReply(r, d.scheme, d.boundaryLess)
}

// DecodeGetEphemeralReadDepsReply reads a GetEphemeralReadDeps reply.
func (d *Decoder) DecodeGetEphemeralReadDepsReply(r wirebuf.Source) (GetEphemeralReadDepsReply, error) {
	return ReadGetEphemeralReadDepsReply(r)
}
