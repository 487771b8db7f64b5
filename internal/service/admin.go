package service

import (
	"context"
	"fmt"

	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/repository"
	"weighbridge-server/internal/security"
)

const ActionResetSerialNumber = "RESET_SERIAL_NUMBER"

type adminService struct {
	loginChecker  security.SecretChecker
	actionChecker security.SecretChecker
	adminRepo     repository.AdminRepository
	snapshots     *Snapshots
}

func NewAdminService(
	loginChecker security.SecretChecker,
	actionChecker security.SecretChecker,
	adminRepo repository.AdminRepository,
	snapshots *Snapshots,
) AdminService {
	return &adminService{
		loginChecker:  loginChecker,
		actionChecker: actionChecker,
		adminRepo:     adminRepo,
		snapshots:     snapshots,
	}
}

func (s *adminService) CheckLogin(password string) error {
	return s.loginChecker.Check(password)
}

// ExecuteAction runs a privileged action. Unrecognized actions succeed without effect.
func (s *adminService) ExecuteAction(ctx context.Context, password, action string) AdminResult {
	if err := s.actionChecker.Check(password); err != nil {
		logger.Warn("Admin action rejected", "action", action)
		return AdminResult{Success: false, Message: "Invalid Admin Password"}
	}

	switch action {
	case ActionResetSerialNumber:
		if err := s.ResetSerials(ctx); err != nil {
			return AdminResult{Success: false, Message: fmt.Sprintf("Error: %v", err)}
		}
		return AdminResult{Success: true, Message: "Serial numbers reset. All pending transactions cleared."}
	default:
		logger.Info("Admin action accepted with no effect", "action", action)
		return AdminResult{Success: true, Message: "Action executed"}
	}
}

// ResetSerials clears the in-flight store and restarts numbering. Finalized records are kept.
func (s *adminService) ResetSerials(ctx context.Context) error {
	logger.EnterMethod("adminService.ResetSerials")

	if err := s.adminRepo.ResetSerials(ctx); err != nil {
		logger.ExitMethodWithError("adminService.ResetSerials", err)
		return err
	}

	if err := s.snapshots.PublishPending(ctx); err != nil {
		logger.Error("Failed to load in-flight list after reset", "error", err)
	}

	logger.Warn("Serial numbers reset")
	logger.ExitMethod("adminService.ResetSerials")
	return nil
}
