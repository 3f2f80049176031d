package smpp

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

// Config aggregates the options recognized by the client runtime (spec.md
// section 6.4). It is a plain, validated-once-at-construction struct —
// parsing it from environment variables or files is an external
// collaborator's job; the `env` struct tags merely document the option
// names such a loader would bind to, following the convention
// absmach-magistrala/consumers/notifiers/smpp.Config uses with
// github.com/caarlos0/env.
type Config struct {
	SmscHost string `env:"SMPP_SMSC_HOST"`
	SmscPort int    `env:"SMPP_SMSC_PORT"`

	SystemID   string `env:"SMPP_SYSTEM_ID"`
	Password   string `env:"SMPP_PASSWORD"`
	SystemType string `env:"SMPP_SYSTEM_TYPE"`

	InterfaceVersion byte   `env:"SMPP_INTERFACE_VERSION"  envDefault:"0x34"`
	AddrTON          byte   `env:"SMPP_ADDR_TON"`
	AddrNPI          byte   `env:"SMPP_ADDR_NPI"`
	AddressRange     string `env:"SMPP_ADDRESS_RANGE"`

	Encoding     string `env:"SMPP_ENCODING"      envDefault:"gsm0338"`
	CodecErrors  string `env:"SMPP_CODEC_ERRORS"  envDefault:"strict"`

	EnquireLinkInterval time.Duration `env:"SMPP_ENQUIRE_LINK_INTERVAL"  envDefault:"300s"`
	ConnectTimeout      time.Duration `env:"SMPP_CONNECT_TIMEOUT"        envDefault:"15s"`

	SendRate       float64       `env:"SMPP_SEND_RATE"`
	MaxTokens      float64       `env:"SMPP_MAX_TOKENS"`
	DelayForTokens time.Duration `env:"SMPP_DELAY_FOR_TOKENS"`

	SamplingPeriod time.Duration `env:"SMPP_SAMPLING_PERIOD"`
	SampleSize     int           `env:"SMPP_SAMPLE_SIZE"`
	DenyRequestAt  float64       `env:"SMPP_DENY_REQUEST_AT"`
	ThrottleWait   time.Duration `env:"SMPP_THROTTLE_WAIT"`

	CorrelatorTTL time.Duration `env:"SMPP_CORRELATOR_TTL"  envDefault:"900s"`

	// ClientID identifies this client instance in logs; generated with a
	// v4 UUID if left empty (grounded on
	// absmach-magistrala/authn/uuid.uuidIdentityProvider.ID).
	ClientID string `env:"SMPP_CLIENT_ID"`
}

// defaultErrorMode resolves CodecErrors to an ErrorMode, defaulting to
// strict for unrecognized values.
func (c Config) defaultErrorMode() ErrorMode {
	switch c.CodecErrors {
	case "ignore":
		return ErrorIgnore
	case "replace":
		return ErrorReplace
	default:
		return ErrorStrict
	}
}

// Validate checks the option set for internal consistency and fills in
// ClientID if absent. It does not touch the network.
func (c *Config) Validate() error {
	if c.SmscHost == "" {
		return errors.New("smpp: Config.SmscHost is required")
	}
	if c.SmscPort <= 0 {
		return errors.New("smpp: Config.SmscPort must be positive")
	}
	if c.SystemID == "" {
		return errors.New("smpp: Config.SystemID is required")
	}
	if _, ok := CodecForName(c.Encoding); !ok {
		return errors.New("smpp: Config.Encoding names an unregistered alphabet: " + c.Encoding)
	}
	if c.InterfaceVersion == 0 {
		c.InterfaceVersion = 0x34
	}
	if c.EnquireLinkInterval <= 0 {
		c.EnquireLinkInterval = 300 * time.Second
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 15 * time.Second
	}
	if c.CorrelatorTTL <= 0 {
		c.CorrelatorTTL = defaultCorrelatorTTL
	}
	if c.ClientID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return errors.New("smpp: failed to generate ClientID: " + err.Error())
		}
		c.ClientID = id.String()
	}
	return nil
}
