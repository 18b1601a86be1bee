package auth

// ReadSigningSecret returns the symmetric signing secret from configuration.
// It is read fresh on every call; the package never caches it, which keeps
// secret handling free of process-global state.
func ReadSigningSecret(cfg Config) ([]byte, error) {
	if cfg == nil || cfg.GetSigningSecret() == "" {
		return nil, ErrMissingSigningSecret
	}
	return []byte(cfg.GetSigningSecret()), nil
}
