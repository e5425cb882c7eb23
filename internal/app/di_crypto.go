package app

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/passkeep/passkeep/internal/crypto/domain"
	cryptoService "github.com/passkeep/passkeep/internal/crypto/service"
)

// cryptoComponents groups the cryptographic dependencies. The group key
// service wraps group master keys either with a process master keychain
// (MASTER_KEYS) or with a cloud KMS keeper when KMS_KEY_URI is configured.
type cryptoComponents struct {
	keychain    *cryptoDomain.MasterKeyChain
	keeper      *secrets.Keeper
	groupKeys   cryptoService.GroupKeyService
	aeadManager cryptoService.AEADManager
	keyDeriver  cryptoService.KeyDeriver
	algorithm   cryptoDomain.Algorithm
}

func (c *Container) initCrypto() error {
	c.cryptoInit.Do(func() {
		algorithm, err := cryptoDomain.ParseAlgorithm(c.config.CipherAlgorithm)
		if err != nil {
			c.initErrors["crypto"] = err
			return
		}

		aeadManager := cryptoService.NewAEADManager()

		var groupKeys cryptoService.GroupKeyService
		if c.config.KMSKeyURI != "" {
			keeper, err := cryptoService.OpenKeeper(context.Background(), c.config.KMSKeyURI)
			if err != nil {
				c.initErrors["crypto"] = fmt.Errorf("failed to open kms keeper: %w", err)
				return
			}
			c.crypto.keeper = keeper
			groupKeys = cryptoService.NewKMSGroupKeyService(keeper)
		} else {
			keychain, err := cryptoDomain.LoadMasterKeyChainFromEnv()
			if err != nil {
				c.initErrors["crypto"] = fmt.Errorf("failed to load master key chain: %w", err)
				return
			}
			c.crypto.keychain = keychain
			groupKeys = cryptoService.NewKeychainGroupKeyService(keychain, aeadManager, algorithm)
		}

		c.crypto.algorithm = algorithm
		c.crypto.aeadManager = aeadManager
		c.crypto.keyDeriver = cryptoService.NewRecordKeyDeriver(c.config.KDFIterations)
		c.crypto.groupKeys = groupKeys
	})
	if err, exists := c.initErrors["crypto"]; exists {
		return err
	}
	return nil
}

// GroupKeyService returns the group master key wrapping service.
func (c *Container) GroupKeyService() (cryptoService.GroupKeyService, error) {
	if err := c.initCrypto(); err != nil {
		return nil, err
	}
	return c.crypto.groupKeys, nil
}

// AEADManager returns the AEAD cipher factory.
func (c *Container) AEADManager() (cryptoService.AEADManager, error) {
	if err := c.initCrypto(); err != nil {
		return nil, err
	}
	return c.crypto.aeadManager, nil
}

// KeyDeriver returns the per-record key derivation service.
func (c *Container) KeyDeriver() (cryptoService.KeyDeriver, error) {
	if err := c.initCrypto(); err != nil {
		return nil, err
	}
	return c.crypto.keyDeriver, nil
}

// CipherAlgorithm returns the configured AEAD algorithm for record payloads.
func (c *Container) CipherAlgorithm() (cryptoDomain.Algorithm, error) {
	if err := c.initCrypto(); err != nil {
		return "", err
	}
	return c.crypto.algorithm, nil
}
