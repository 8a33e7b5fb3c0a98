package hashicorp

import (
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/vault/api"
	"github.com/hengadev/recordseal"
)

// createVaultClient creates a Vault client from VAULT_ADDR, VAULT_NAMESPACE and
// either VAULT_TOKEN or VAULT_ROLE_ID plus VAULT_SECRET_ID (AppRole). A token
// takes precedence over AppRole.
func createVaultClient() (*api.Client, error) {
	config := api.DefaultConfig()

	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		config.Address = addr
	}
	if config.Address == "" {
		return nil, fmt.Errorf("%w: VAULT_ADDR environment variable is required", recordseal.ErrInvalidConfiguration)
	}

	config.HttpClient.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Vault client: %w", recordseal.ErrKeyUnavailable, err)
	}

	if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
		client.SetNamespace(namespace)
	}

	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		client.SetToken(token)
		return client, nil
	}

	roleID := os.Getenv("VAULT_ROLE_ID")
	secretID := os.Getenv("VAULT_SECRET_ID")
	if roleID != "" && secretID != "" {
		resp, err := client.Logical().Write("auth/approle/login", map[string]interface{}{
			"role_id":   roleID,
			"secret_id": secretID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to login with AppRole: %w", recordseal.ErrKeyUnavailable, err)
		}
		if resp == nil || resp.Auth == nil {
			return nil, fmt.Errorf("%w: no auth info returned from AppRole login", recordseal.ErrKeyUnavailable)
		}
		client.SetToken(resp.Auth.ClientToken)
		return client, nil
	}

	return nil, fmt.Errorf("%w: no Vault authentication method configured (set VAULT_TOKEN or VAULT_ROLE_ID+VAULT_SECRET_ID)",
		recordseal.ErrInvalidConfiguration)
}
