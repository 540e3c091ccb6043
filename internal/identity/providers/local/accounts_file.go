package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type accountRecord struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	DisplayName  string `yaml:"display_name,omitempty"`
	PasswordHash string `yaml:"password_hash"`
	Disabled     bool   `yaml:"disabled,omitempty"`
}

type accountsFile struct {
	Accounts []accountRecord `yaml:"accounts"`
}

// Open returns a provider whose accounts are loaded from and saved to path.
// A missing file starts empty.
func Open(path string, opts ...Option) (*Provider, error) {
	p := New(opts...)
	p.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse accounts file: %w", err)
	}
	for _, r := range f.Accounts {
		key := normalizeEmail(r.Email)
		p.accounts[key] = &account{
			id:          r.ID,
			email:       key,
			displayName: r.DisplayName,
			hash:        []byte(r.PasswordHash),
			disabled:    r.Disabled,
		}
	}
	return p, nil
}

// save writes every account to p.path. Callers hold p.mu.
func (p *Provider) save() error {
	if p.path == "" {
		return nil
	}
	f := accountsFile{Accounts: make([]accountRecord, 0, len(p.accounts))}
	for _, a := range p.accounts {
		f.Accounts = append(f.Accounts, accountRecord{
			ID:           a.id,
			Email:        a.email,
			DisplayName:  a.displayName,
			PasswordHash: string(a.hash),
			Disabled:     a.disabled,
		})
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}
	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create accounts dir: %w", err)
		}
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("write accounts file: %w", err)
	}
	return nil
}
