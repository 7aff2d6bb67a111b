package services

import (
	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
)

type ManagementService struct {
	account commonModels.Account
}

func NewManagementService(username, passwordHash string) *ManagementService {
	return &ManagementService{account: commonModels.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         utils.RoleAdmin,
	}}
}

// AuthenticateManagement memvalidasi login admin data referensi.
func (s *ManagementService) AuthenticateManagement(username, password string) (*commonModels.Account, error) {
	return s.account.Authenticate(username, password)
}
