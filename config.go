package lti

import (
	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// Config controls how launch identities map onto local users.
type Config struct {
	CreateUnknownUser bool   `env:"LTI_AUTH_CREATE_UNKNOWN_USER" envDefault:"true"`
	AllowAllUsers     bool   `env:"LTI_AUTH_ALLOW_ALL_USERS"     envDefault:"false"`
	LowercaseUsername bool   `env:"LTI_AUTH_LOWERCASE_USERNAME"  envDefault:"false"`
	UsernamePrefix    string `env:"LTI_AUTH_USERNAME_PREFIX"`
	DefaultRole       string `env:"LTI_AUTH_DEFAULT_ROLE"        envDefault:"guest"`
	LaunchKey         string `env:"LTI_AUTH_LAUNCH_KEY"          envDefault:"lti_launch"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		CreateUnknownUser: true,
		DefaultRole:       RoleGuest,
		LaunchKey:         DefaultLaunchKey,
	}
}

// LoadConfigFromEnv parses the LTI_AUTH_* environment variables
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryValidation, "failed to parse LTI auth environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration values
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.DefaultRole,
			validation.Required,
			validation.In(RoleGuest, RoleMember, RoleAdmin, RoleOwner),
		),
		validation.Field(&c.LaunchKey, validation.Required),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, ErrInvalidConfig.Message).
			WithTextCode(TextCodeInvalidConfig).
			WithCode(errors.CodeBadRequest)
	}
	return nil
}

// UsernameCleaner builds the cleaner described by the configuration
func (c Config) UsernameCleaner() UsernameCleaner {
	cleaners := []UsernameCleaner{}
	if c.UsernamePrefix != "" {
		cleaners = append(cleaners, StripPrefix(c.UsernamePrefix))
	}
	if c.LowercaseUsername {
		cleaners = append(cleaners, Lowercase)
	}
	if len(cleaners) == 0 {
		return IdentityUsername
	}
	return ChainCleaners(cleaners...)
}

// BackendOptions translates the configuration into backend options
func (c Config) BackendOptions() []BackendOption {
	opts := []BackendOption{
		WithCreateUnknownUser(c.CreateUnknownUser),
		WithUsernameCleaner(c.UsernameCleaner()),
	}
	if c.AllowAllUsers {
		opts = append(opts, WithAuthenticabilityCheck(AllowAllUsers))
	}
	return opts
}

// NewBackendFromConfig wires a Backend on top of the bun repositories.
// Extra options are applied after the configured ones.
func NewBackendFromConfig(cfg Config, repo RepositoryManager, opts ...BackendOption) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	profiles := NewProfileSync(repo.Users(), repo.LaunchUsers())

	all := append([]BackendOption{WithUserConfigurer(profiles)}, cfg.BackendOptions()...)
	all = append(all, opts...)

	backend := NewBackend(repo.Users(), all...)
	profiles.WithLoggerProvider(backend.provider)

	return backend, nil
}
