// internal/config/server.go
package config

import (
	"os"
	"strings"
)

// ServerConfig configures `gamedash serve`
type ServerConfig struct {
	Listen      string         `toml:"listen"`
	LogLevel    string         `toml:"log_level"`
	UserTable   string         `toml:"user_table"`
	ServerTable string         `toml:"server_table"`
	Login       DatabaseConfig `toml:"login_db"`
	Game        GameConfig     `toml:"game_db"`
	SSH         SSHConfig      `toml:"ssh"`
}

// DatabaseConfig describes one database connection
type DatabaseConfig struct {
	Type     string `toml:"type"` // mysql, postgres, sqlite
	Host     string `toml:"host,omitempty"`
	Port     int    `toml:"port,omitempty"`
	User     string `toml:"user,omitempty"`
	Database string `toml:"database"`
	// PasswordEnv names an environment variable holding the password
	PasswordEnv string `toml:"password_env,omitempty"`
	// Password is kept in memory for usage
	Password string `toml:"-"`
	// EncryptedPassword is the one persisted in the config file
	EncryptedPassword string `toml:"password,omitempty"`
}

// GameConfig describes the per-server game databases
type GameConfig struct {
	DB DatabaseConfig `toml:"db"`
	// Prefix is prepended to the server id to form the database name
	Prefix string `toml:"prefix"`
	// DatabaseTemplate maps a database name to the connection's database
	// field; "{db}" is replaced, e.g. "games/{db}.sqlite" for SQLite.
	DatabaseTemplate string `toml:"database_template"`
	PlayerTable      string `toml:"player_table"`
	BackpackTable    string `toml:"backpack_table"`
}

// SSHConfig is the optional tunnel both login and game databases go through
type SSHConfig struct {
	Host              string `toml:"host,omitempty"`
	Port              int    `toml:"port,omitempty"`
	User              string `toml:"user,omitempty"`
	KeyPath           string `toml:"key_path,omitempty"`
	PasswordEnv       string `toml:"password_env,omitempty"`
	Password          string `toml:"-"`
	EncryptedPassword string `toml:"password,omitempty"`
}

// DefaultServerConfig matches a local SQLite setup
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Listen:      ":8000",
		LogLevel:    "info",
		UserTable:   "sys_user",
		ServerTable: "serverinfo",
		Login: DatabaseConfig{
			Type:     "sqlite",
			Database: "login.sqlite",
		},
		Game: GameConfig{
			DB:               DatabaseConfig{Type: "sqlite"},
			Prefix:           "fe_game_",
			DatabaseTemplate: "games/{db}.sqlite",
			PlayerTable:      "player",
			BackpackTable:    "backpack",
		},
	}
}

func (s *ServerConfig) applyDefaults() bool {
	d := DefaultServerConfig()
	updated := false
	set := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
			updated = true
		}
	}
	set(&s.Listen, d.Listen)
	set(&s.LogLevel, d.LogLevel)
	set(&s.UserTable, d.UserTable)
	set(&s.ServerTable, d.ServerTable)
	set(&s.Login.Type, d.Login.Type)
	set(&s.Game.DB.Type, s.Login.Type)
	set(&s.Game.Prefix, d.Game.Prefix)
	set(&s.Game.PlayerTable, d.Game.PlayerTable)
	set(&s.Game.BackpackTable, d.Game.BackpackTable)
	if s.Game.DatabaseTemplate == "" {
		s.Game.DatabaseTemplate = "{db}"
		if s.Game.DB.Type == "sqlite" {
			s.Game.DatabaseTemplate = d.Game.DatabaseTemplate
		}
		updated = true
	}
	return updated
}

// GameDatabase returns the connection settings for one game database
func (g GameConfig) GameDatabase(dbName string) DatabaseConfig {
	cfg := g.DB
	cfg.Database = strings.ReplaceAll(g.DatabaseTemplate, "{db}", dbName)
	return cfg
}

// ResolvedPassword prefers the environment over the stored secret
func (d DatabaseConfig) ResolvedPassword() string {
	if d.PasswordEnv != "" {
		if v, ok := os.LookupEnv(d.PasswordEnv); ok {
			return v
		}
	}
	return d.Password
}

// ResolvedPassword prefers the environment over the stored secret
func (s SSHConfig) ResolvedPassword() string {
	if s.PasswordEnv != "" {
		if v, ok := os.LookupEnv(s.PasswordEnv); ok {
			return v
		}
	}
	return s.Password
}

// Enabled reports whether a tunnel is configured
func (s SSHConfig) Enabled() bool {
	return s.Host != ""
}

func (s *ServerConfig) secrets() []secretField {
	return []secretField{
		{plain: &s.Login.Password, sealed: &s.Login.EncryptedPassword},
		{plain: &s.Game.DB.Password, sealed: &s.Game.DB.EncryptedPassword},
		{plain: &s.SSH.Password, sealed: &s.SSH.EncryptedPassword},
	}
}

// encryptSecrets seals in-memory passwords before saving
func (s *ServerConfig) encryptSecrets() {
	fields := s.secrets()
	if !anyPlain(fields) {
		return
	}
	key, err := GetMasterKey()
	if err != nil {
		return
	}
	for _, f := range fields {
		if *f.plain == "" {
			continue
		}
		if encrypted, err := Encrypt(*f.plain, key); err == nil {
			*f.sealed = encrypted
		}
	}
}

// decryptSecrets opens persisted passwords after loading
func (s *ServerConfig) decryptSecrets() {
	fields := s.secrets()
	if !anySealed(fields) {
		return
	}
	key, err := GetMasterKey()
	if err != nil {
		return
	}
	for _, f := range fields {
		if *f.sealed == "" {
			continue
		}
		if decrypted, err := Decrypt(*f.sealed, key); err == nil {
			*f.plain = decrypted
		}
	}
}

type secretField struct {
	plain  *string
	sealed *string
}

func anyPlain(fields []secretField) bool {
	for _, f := range fields {
		if *f.plain != "" {
			return true
		}
	}
	return false
}

func anySealed(fields []secretField) bool {
	for _, f := range fields {
		if *f.sealed != "" {
			return true
		}
	}
	return false
}
