package git

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/hashicorp/go-hclog"
	crssh "golang.org/x/crypto/ssh"

	"github.com/scan-io-git/complyscan/pkg/shared/config"
	"github.com/scan-io-git/complyscan/pkg/shared/files"
)

// Client reads diffs from local repositories and fetches commits missing from shallow clones.
type Client struct {
	logger       hclog.Logger
	auth         transport.AuthMethod
	timeout      time.Duration
	fetchMissing bool
	insecureTLS  bool
}

// Authenticator defines an interface for different authentication methods.
type Authenticator interface {
	SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error)
}

// SSHKeyAuthenticator provides SSH key-based authentication.
type SSHKeyAuthenticator struct{}

// SSHAgentAuthenticator provides SSH agent-based authentication.
type SSHAgentAuthenticator struct{}

// HTTPAuthenticator provides HTTP basic authentication.
type HTTPAuthenticator struct{}

// SetupAuth configures SSH key authentication.
func (s *SSHKeyAuthenticator) SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH key authentication")

	sshKeyPath, err := files.ExpandPath(cfg.GitClient.SSHKey)
	if err != nil {
		logger.Error("failed to expand SSH key path", "path", cfg.GitClient.SSHKey, "error", err)
		return nil, err
	}

	auth, err := ssh.NewPublicKeysFromFile("git", sshKeyPath, cfg.GitClient.SSHKeyPassword)
	if err != nil {
		logger.Error("failed to set up SSH key authentication", "error", err.Error())
		return nil, err
	}
	if config.GetBoolValue(cfg, "GitClient.InsecureTLS", false) {
		auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
			HostKeyCallback: crssh.InsecureIgnoreHostKey(),
		}
	}
	return auth, nil
}

// SetupAuth configures SSH agent authentication.
func (s *SSHAgentAuthenticator) SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH agent authentication")

	auth, err := ssh.NewSSHAgentAuth("git")
	if err != nil {
		logger.Error("failed to set up SSH agent authentication", "error", err)
		return nil, err
	}
	if config.GetBoolValue(cfg, "GitClient.InsecureTLS", false) {
		auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
			HostKeyCallback: crssh.InsecureIgnoreHostKey(),
		}
	}
	return auth, nil
}

// SetupAuth configures HTTP basic authentication.
func (h *HTTPAuthenticator) SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up HTTP authentication")

	return &http.BasicAuth{
		Username: cfg.GitClient.Username,
		Password: config.GetGitToken(cfg),
	}, nil
}

// getAuthenticator returns the appropriate Authenticator based on the authentication type.
// An empty type means fetches run unauthenticated.
func getAuthenticator(authType string) (Authenticator, error) {
	switch authType {
	case "":
		return nil, nil
	case "ssh-key":
		return &SSHKeyAuthenticator{}, nil
	case "ssh-agent":
		return &SSHAgentAuthenticator{}, nil
	case "http":
		return &HTTPAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", authType)
	}
}

// New initializes a new Git Client from the git_client configuration.
func New(logger hclog.Logger, cfg *config.Config) (*Client, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	authenticator, err := getAuthenticator(cfg.GitClient.AuthType)
	if err != nil {
		logger.Error("unsupported authentication type", "error", err)
		return nil, fmt.Errorf("unsupported authentication type: %w", err)
	}

	var auth transport.AuthMethod
	if authenticator != nil {
		auth, err = authenticator.SetupAuth(cfg, logger)
		if err != nil {
			logger.Error("failed to set up Git authentication", "error", err)
			return nil, fmt.Errorf("failed to set up Git authentication: %w", err)
		}
	}

	return &Client{
		logger:       logger,
		auth:         auth,
		timeout:      config.GetGitTimeout(cfg),
		fetchMissing: config.GetBoolValue(cfg, "GitClient.FetchMissing", true),
		insecureTLS:  config.GetBoolValue(cfg, "GitClient.InsecureTLS", false),
	}, nil
}
