package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/eduflow/eduflow-server/internal/auth"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/eduflow/eduflow-server/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SuperAdminStore is satisfied by *storage.CRMStore.
type SuperAdminStore interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	CreateAccountWithCenter(ctx context.Context, center *models.Center, account *models.Account) error
	UpdateAccount(ctx context.Context, id int64, mutate func(*models.Account) error) (*models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	AccountStats(ctx context.Context) (*models.AccountStats, error)
}

// SuperAdminHandler serves the developer portal's tenant-administrator management.
type SuperAdminHandler struct {
	store  SuperAdminStore
	scheme auth.PasswordScheme
	logger *zap.Logger
}

func NewSuperAdminHandler(store SuperAdminStore, scheme auth.PasswordScheme, logger *zap.Logger) *SuperAdminHandler {
	return &SuperAdminHandler{
		store:  store,
		scheme: scheme,
		logger: logger,
	}
}

var errAccountNotFound = apperror.NotFound("Super admin not found.")

func (h *SuperAdminHandler) List(c *fiber.Ctx) error {
	accounts, err := h.store.ListAccounts(c.UserContext())
	if err != nil {
		return apperror.Internal(err, "Failed to fetch super admins.")
	}

	views := make([]models.SuperAdmin, 0, len(accounts))
	for i := range accounts {
		views = append(views, models.NewSuperAdmin(&accounts[i]))
	}
	return c.JSON(views)
}

// Create inserts a new center and its first administrator in one transaction.
func (h *SuperAdminHandler) Create(c *fiber.Ctx) error {
	var req models.CreateSuperAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body.")
	}
	normalizeCreate(&req)

	if err := validation.ValidateStruct(req); err != nil {
		return apperror.Validation(validation.Describe(err))
	}

	hash, err := auth.HashPassword(h.scheme, req.Password)
	if err != nil {
		return apperror.Internal(err, "Failed to create super admin.")
	}

	center := &models.Center{
		Name:          req.CompanyName,
		Code:          centerCode(req.CompanyName),
		Phone:         req.Phone,
		City:          req.City,
		PrincipalName: strings.TrimSpace(req.FirstName + " " + req.LastName),
	}
	account := &models.Account{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         models.RoleSuperadmin,
		Status:       models.StatusActive,
		Permissions:  models.NewPermissionDocument(req.PlatformAccess, req.Plan),
	}
	if req.Email != "" {
		email := req.Email
		account.Email = &email
		center.Email = email
	}

	if err := h.store.CreateAccountWithCenter(c.UserContext(), center, account); err != nil {
		if errors.Is(err, storage.ErrDuplicateAccount) {
			return apperror.ErrDuplicateAccount
		}
		return apperror.Internal(err, "Failed to create super admin.")
	}

	h.logger.Info("Super admin created",
		zap.Int64("id", account.ID),
		zap.Int64("center_id", center.ID),
		zap.String("username", account.Username),
	)
	return c.Status(fiber.StatusCreated).JSON(models.NewSuperAdmin(account))
}

// Update applies a partial update. Permission flags are merged into the stored document
// rather than replacing it.
func (h *SuperAdminHandler) Update(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	var req models.UpdateSuperAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body.")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return apperror.Validation(validation.Describe(err))
	}
	if req.Empty() {
		return apperror.Validation("Nothing to update.")
	}

	account, err := h.store.UpdateAccount(c.UserContext(), id, func(a *models.Account) error {
		applyUpdate(a, req)
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return errAccountNotFound
		}
		return apperror.Internal(err, "Failed to update super admin.")
	}

	return c.JSON(models.NewSuperAdmin(account))
}

func (h *SuperAdminHandler) Delete(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	if err := h.store.DeleteAccount(c.UserContext(), id); err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return errAccountNotFound
		}
		return apperror.Internal(err, "Failed to delete super admin.")
	}

	h.logger.Info("Super admin deleted", zap.Int64("id", id))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SuperAdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.store.AccountStats(c.UserContext())
	if err != nil {
		return apperror.Internal(err, "Failed to fetch stats.")
	}
	return c.JSON(stats)
}

func applyUpdate(a *models.Account, req models.UpdateSuperAdminRequest) {
	if req.PlatformAccess != nil && !req.PlatformAccess.Empty() {
		a.Permissions = models.MergePlatformAccess(a.Permissions, *req.PlatformAccess)
	}
	if req.Plan != nil {
		a.Permissions = models.WithPlan(a.Permissions, strings.TrimSpace(*req.Plan))
	}
	if req.Status != nil {
		a.Status = *req.Status
	}

	switch {
	case req.IsLocked != nil && !*req.IsLocked:
		a.IsLocked = false
		a.LockedUntil = nil
		a.LoginAttempts = 0
	case req.IsLocked != nil:
		a.IsLocked = true
		a.LockedUntil = req.LockedUntil
	case req.LockedUntil != nil && a.IsLocked:
		a.LockedUntil = req.LockedUntil
	}
}

func accountID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("Invalid id.")
	}
	return id, nil
}

func normalizeCreate(req *models.CreateSuperAdminRequest) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.City = strings.TrimSpace(req.City)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Plan = strings.TrimSpace(req.Plan)
}

// centerCode builds a unique code from the company initials, e.g. "BLA-3f2a9c1e".
func centerCode(company string) string {
	var initials strings.Builder
	for _, word := range strings.Fields(company) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				initials.WriteRune(unicode.ToUpper(r))
				break
			}
		}
		if initials.Len() >= 4 {
			break
		}
	}

	prefix := initials.String()
	if prefix == "" {
		prefix = "EDU"
	}
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
