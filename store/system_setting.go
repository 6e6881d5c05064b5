package store

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/epustaka/epustaka/util"
)

const (
	// SystemSettingSecurityName keys the security block in system_setting.
	SystemSettingSecurityName = "security"
	// SystemSettingGeneralName keys the general block in system_setting.
	SystemSettingGeneralName = "general"
)

type SystemSecuritySetting struct {
	JWTSecret string `json:"jwt_secret"`
}

type SystemGeneralSetting struct {
	DisableSignup bool `json:"disable_signup"`
}

// GetOrUpsertSystemSecuritySetting loads the security setting, generating
// and persisting a fresh JWT secret on first run.
func (s *Store) GetOrUpsertSystemSecuritySetting() (*SystemSecuritySetting, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM system_setting WHERE name = ?`, SystemSettingSecurityName).Scan(&raw)
	if err == nil {
		setting := &SystemSecuritySetting{}
		if err := json.Unmarshal([]byte(raw), setting); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal security setting")
		}
		return setting, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	secret, err := util.RandomString(32)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate jwt secret")
	}
	setting := &SystemSecuritySetting{JWTSecret: secret}
	value, err := json.Marshal(setting)
	if err != nil {
		return nil, err
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	stmt := `
		INSERT INTO system_setting (name, value, description)
		VALUES (?, ?, 'security settings')
		ON CONFLICT(name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.db.Exec(stmt, SystemSettingSecurityName, string(value)); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *Store) GetSystemGeneralSetting() (*SystemGeneralSetting, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM system_setting WHERE name = ?`, SystemSettingGeneralName).Scan(&raw)
	if err != nil {
		return nil, err
	}
	setting := &SystemGeneralSetting{}
	if err := json.Unmarshal([]byte(raw), setting); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal general setting")
	}
	return setting, nil
}

func (s *Store) UpsertSystemGeneralSetting(setting *SystemGeneralSetting) error {
	value, err := json.Marshal(setting)
	if err != nil {
		return err
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	stmt := `
		INSERT INTO system_setting (name, value, description)
		VALUES (?, ?, 'general settings')
		ON CONFLICT(name) DO UPDATE SET value = EXCLUDED.value`
	_, err = s.db.Exec(stmt, SystemSettingGeneralName, string(value))
	return err
}
