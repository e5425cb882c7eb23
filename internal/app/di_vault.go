package app

import (
	"fmt"

	"github.com/passkeep/passkeep/internal/vault/domain"
	vaultRepository "github.com/passkeep/passkeep/internal/vault/repository"
	vaultService "github.com/passkeep/passkeep/internal/vault/service"
	vaultUsecase "github.com/passkeep/passkeep/internal/vault/usecase"
)

// vaultComponents groups the vault repositories and use cases.
type vaultComponents struct {
	groupRepo      vaultUsecase.GroupRepository
	membershipRepo vaultUsecase.MembershipRepository
	directoryRepo  vaultUsecase.DirectoryRepository
	recordRepo     vaultUsecase.RecordRepository
	historyRepo    vaultUsecase.HistoryRepository
	accessLogRepo  vaultUsecase.AccessLogRepository

	policy *vaultService.AccessPolicy

	groupUseCase      vaultUsecase.GroupUseCase
	membershipUseCase vaultUsecase.MembershipUseCase
	directoryUseCase  vaultUsecase.DirectoryUseCase
	recordUseCase     vaultUsecase.RecordUseCase
}

func (c *Container) limits() domain.Limits {
	return domain.Limits{
		MaxTitleLength:  c.config.MaxTitleLength,
		MaxFieldLength:  c.config.MaxFieldLength,
		MaxNotesLength:  c.config.MaxNotesLength,
		MaxCustomFields: c.config.MaxCustomFields,
		MaxTags:         c.config.MaxTags,
	}
}

func (c *Container) initVaultRepositories() error {
	c.vaultReposInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["vaultRepos"] = fmt.Errorf("failed to get database for vault repositories: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.vault.groupRepo = vaultRepository.NewMySQLGroupRepository(db)
			c.vault.membershipRepo = vaultRepository.NewMySQLMembershipRepository(db)
			c.vault.directoryRepo = vaultRepository.NewMySQLDirectoryRepository(db)
			c.vault.recordRepo = vaultRepository.NewMySQLRecordRepository(db)
			c.vault.historyRepo = vaultRepository.NewMySQLHistoryRepository(db)
			c.vault.accessLogRepo = vaultRepository.NewMySQLAccessLogRepository(db)
		case "postgres":
			c.vault.groupRepo = vaultRepository.NewPostgreSQLGroupRepository(db)
			c.vault.membershipRepo = vaultRepository.NewPostgreSQLMembershipRepository(db)
			c.vault.directoryRepo = vaultRepository.NewPostgreSQLDirectoryRepository(db)
			c.vault.recordRepo = vaultRepository.NewPostgreSQLRecordRepository(db)
			c.vault.historyRepo = vaultRepository.NewPostgreSQLHistoryRepository(db)
			c.vault.accessLogRepo = vaultRepository.NewPostgreSQLAccessLogRepository(db)
		default:
			c.initErrors["vaultRepos"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["vaultRepos"]; exists {
		return err
	}
	return nil
}

func (c *Container) initVaultUseCases() error {
	c.vaultUseCasesInit.Do(func() {
		fail := func(err error) {
			c.initErrors["vaultUseCases"] = err
		}

		if err := c.initVaultRepositories(); err != nil {
			fail(err)
			return
		}
		if err := c.initCrypto(); err != nil {
			fail(err)
			return
		}

		txManager, err := c.TxManager()
		if err != nil {
			fail(err)
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			fail(err)
			return
		}

		c.vault.policy = vaultService.NewAccessPolicy()
		limits := c.limits()

		c.vault.groupUseCase = vaultUsecase.NewGroupService(
			txManager,
			c.vault.groupRepo,
			c.vault.membershipRepo,
			c.crypto.groupKeys,
			c.vault.policy,
			limits,
		)
		c.vault.membershipUseCase = vaultUsecase.NewMembershipService(
			txManager,
			c.vault.groupRepo,
			c.vault.membershipRepo,
			c.vault.policy,
		)
		c.vault.directoryUseCase = vaultUsecase.NewDirectoryService(
			txManager,
			c.vault.groupRepo,
			c.vault.membershipRepo,
			c.vault.directoryRepo,
			c.vault.policy,
			limits,
		)
		recordUseCase := vaultUsecase.NewRecordService(
			txManager,
			c.vault.groupRepo,
			c.vault.membershipRepo,
			c.vault.directoryRepo,
			c.vault.recordRepo,
			c.vault.historyRepo,
			c.vault.accessLogRepo,
			c.crypto.groupKeys,
			c.crypto.aeadManager,
			c.crypto.keyDeriver,
			c.crypto.algorithm,
			c.vault.policy,
			limits,
		)
		c.vault.recordUseCase = vaultUsecase.NewRecordUseCaseWithMetrics(recordUseCase, businessMetrics)
	})
	if err, exists := c.initErrors["vaultUseCases"]; exists {
		return err
	}
	return nil
}

// GroupUseCase returns the group lifecycle use case.
func (c *Container) GroupUseCase() (vaultUsecase.GroupUseCase, error) {
	if err := c.initVaultUseCases(); err != nil {
		return nil, err
	}
	return c.vault.groupUseCase, nil
}

// MembershipUseCase returns the group membership use case.
func (c *Container) MembershipUseCase() (vaultUsecase.MembershipUseCase, error) {
	if err := c.initVaultUseCases(); err != nil {
		return nil, err
	}
	return c.vault.membershipUseCase, nil
}

// DirectoryUseCase returns the directory tree use case.
func (c *Container) DirectoryUseCase() (vaultUsecase.DirectoryUseCase, error) {
	if err := c.initVaultUseCases(); err != nil {
		return nil, err
	}
	return c.vault.directoryUseCase, nil
}

// RecordUseCase returns the encrypted record use case, instrumented with
// business metrics.
func (c *Container) RecordUseCase() (vaultUsecase.RecordUseCase, error) {
	if err := c.initVaultUseCases(); err != nil {
		return nil, err
	}
	return c.vault.recordUseCase, nil
}
