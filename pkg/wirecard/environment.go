package wirecard

import (
	"errors"
	"fmt"
)

// Environment selects which Wirecard deployment a Client talks to.
type Environment string

const (
	Production Environment = "production"
	Sandbox    Environment = "sandbox"

	ProductionBaseURL = "https://api.moip.com.br"
	SandboxBaseURL    = "https://sandbox.moip.com.br"
)

// ErrUnknownEnvironment is returned for any environment other than Production or Sandbox.
var ErrUnknownEnvironment = errors.New("unknown wirecard environment")

// ParseEnvironment maps the literal "production" or "sandbox" to an Environment.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(s)
	if _, err := env.BaseURL(); err != nil {
		return "", err
	}
	return env, nil
}

// BaseURL returns the fixed API root for the environment.
func (e Environment) BaseURL() (string, error) {
	switch e {
	case Production:
		return ProductionBaseURL, nil
	case Sandbox:
		return SandboxBaseURL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, string(e))
	}
}

func (e Environment) String() string { return string(e) }
