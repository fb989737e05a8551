package routable

import (
	"github.com/accordwire/accord/errs"
	"github.com/accordwire/accord/internal/options"
	"github.com/accordwire/accord/keycodec"
	"github.com/accordwire/accord/wirebuf"
)

// Codec binds a key scheme and a permitted variant set at construction
// time, so call sites don't have to carry both parameters through every
// Encode/Decode call. It is a thin wrapper over the package-level
// Encode/Size/Decode functions, configured with functional options
// rather than an exported mutable struct.
type Codec struct {
	scheme    keycodec.Scheme
	permitted PermittedSet
}

// Option configures a Codec at construction time.
type Option = options.Option[*Codec]

// WithScheme sets the key scheme a Codec uses to size and frame routing
// keys. Required — NewCodec fails without one.
func WithScheme(scheme keycodec.Scheme) Option {
	return options.New(func(c *Codec) error {
		if scheme == nil {
			return errs.ErrNilScheme
		}

		c.scheme = scheme

		return nil
	})
}

// WithPermitted restricts the variants a Codec will encode or accept on
// decode. Defaults to AllVariants() if never set.
func WithPermitted(variants ...Variant) Option {
	return options.NoError(func(c *Codec) {
		c.permitted = NewPermittedSet(variants...)
	})
}

// NewCodec builds a Codec from opts. WithScheme must be among them.
func NewCodec(opts ...Option) (*Codec, error) {
	c := &Codec{permitted: AllVariants()}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.scheme == nil {
		return nil, errs.ErrNilScheme
	}

	return c, nil
}

// Encode writes v using the Codec's bound scheme and permitted set.
func (c *Codec) Encode(s wirebuf.Sink, v Value) error {
	return Encode(s, c.scheme, c.permitted, v)
}

// Size returns the on-wire size Encode would produce for v.
func (c *Codec) Size(v Value) int {
	return Size(c.scheme, v)
}

// Decode reads a Value using the Codec's bound scheme and permitted set.
func (c *Codec) Decode(r wirebuf.Source) (Value, error) {
	return Decode(r, c.scheme, c.permitted)
}
