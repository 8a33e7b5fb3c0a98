// Package hashicorp stores recordseal encryption keys in HashiCorp Vault.
//
// KVKeyStore implements recordseal.KeyStore on the KV v2 secrets engine. Each
// key is written to its own path, keyed by store entry id:
//
//	<mount>/data/recordseal/keys/<entry id>
//
// with the key base64 encoded under "key" and the record identifier under
// "identifier".
//
// # Setup
//
//	vault secrets enable -path=secret kv-v2
//
// The client is configured from the environment:
//
//	export VAULT_ADDR="https://vault.example.com:8200"
//	export VAULT_TOKEN="hvs.XXXXX"            # or VAULT_ROLE_ID + VAULT_SECRET_ID
//	export VAULT_NAMESPACE="admin/hospital"   # optional, HCP Vault
//
// # Usage
//
//	keys, err := hashicorp.NewKVKeyStore("secret")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := recordseal.Open(ctx, cfg, recordseal.WithKeyStore(keys))
package hashicorp
