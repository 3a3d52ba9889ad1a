package config

import (
	"fmt"
	"os"

	"github.com/andihoo/chrono/internal/domain"
	"gopkg.in/yaml.v3"
)

// accountsFile is the on-disk shape of the bootstrap accounts list:
//
//	accounts:
//	  - email: boss@example.com
//	    name: Boss
//	    role: admin
type accountsFile struct {
	Accounts []struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
		Role  string `yaml:"role"`
	} `yaml:"accounts"`
}

// LoadAccounts reads the bootstrap accounts. An empty path yields none.
func LoadAccounts(path string) ([]*domain.User, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading accounts file: %w", err)
	}
	return ParseAccounts(data)
}

func ParseAccounts(data []byte) ([]*domain.User, error) {
	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal accounts: %w", err)
	}
	users := make([]*domain.User, 0, len(f.Accounts))
	seen := make(map[string]bool, len(f.Accounts))
	for i, a := range f.Accounts {
		email := domain.NormalizeEmail(a.Email)
		if email == "" {
			return nil, fmt.Errorf("account %d: email is required", i+1)
		}
		if seen[email] {
			return nil, fmt.Errorf("account %d: duplicate email %s", i+1, email)
		}
		seen[email] = true
		name := a.Name
		if name == "" {
			name = email
		}
		users = append(users, &domain.User{Email: email, Name: name, Role: domain.ParseRole(a.Role)})
	}
	return users, nil
}
