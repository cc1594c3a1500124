package services

import (
	"diario/internal/crypto"
	"diario/internal/models"
)

// EncryptionService wraps the cipher with the field rules of the hosted tables
type EncryptionService struct {
	cipher *crypto.Cipher
}

// NewEncryptionService creates a new encryption service
func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	c, err := crypto.NewCipher(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

// EncryptProfile encrypts the email and sets its blind index
func (s *EncryptionService) EncryptProfile(p *models.Profile) error {
	p.EmailBlindIndex = s.EmailBlindIndex(p.Email)
	encrypted, err := s.cipher.Seal(p.Email, []byte(p.ID))
	if err != nil {
		return err
	}
	p.Email = encrypted
	return nil
}

// DecryptProfile decrypts sensitive profile fields after retrieving from DB
func (s *EncryptionService) DecryptProfile(p *models.Profile) error {
	email, err := s.cipher.Open(p.Email, []byte(p.ID))
	if err != nil {
		return err
	}
	p.Email = email
	return nil
}

// EncryptEntry encrypts the free-text reflection. Gratitude lines stay in
// clear text.
func (s *EncryptionService) EncryptEntry(e *models.DailyEntry) error {
	if e.Reflection == "" {
		return nil
	}
	encrypted, err := s.cipher.Seal(e.Reflection, entryAAD(e))
	if err != nil {
		return err
	}
	e.Reflection = encrypted
	return nil
}

// DecryptEntry decrypts sensitive entry fields after retrieving from DB
func (s *EncryptionService) DecryptEntry(e *models.DailyEntry) error {
	if e.Reflection == "" {
		return nil
	}
	plain, err := s.cipher.Open(e.Reflection, entryAAD(e))
	if err != nil {
		return err
	}
	e.Reflection = plain
	return nil
}

// EmailBlindIndex generates a blind index for email lookup
func (s *EncryptionService) EmailBlindIndex(email string) string {
	return s.cipher.BlindIndex(email)
}

func entryAAD(e *models.DailyEntry) []byte {
	return []byte(e.UserID + ":" + e.EntryDate)
}
