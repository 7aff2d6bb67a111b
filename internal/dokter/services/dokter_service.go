package services

import (
	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
)

type DokterService struct {
	account commonModels.Account
}

func NewDokterService(username, passwordHash string) *DokterService {
	return &DokterService{account: commonModels.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         utils.RoleDokter,
	}}
}

// AuthenticateDokter memvalidasi login dokter terhadap akun yang dikonfigurasi.
func (s *DokterService) AuthenticateDokter(username, password string) (*commonModels.Account, error) {
	return s.account.Authenticate(username, password)
}
