package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tokenledger/core"
	"tokenledger/core/types"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	LogPath       string `toml:"LogPath,omitempty"`
	Environment   string `toml:"Environment"`

	Token   TokenConfig        `toml:"Token"`
	Genesis []AllocationConfig `toml:"Genesis,omitempty"`
}

// TokenConfig holds the ledger parameters. Amounts are decimal strings so
// the file can express values beyond 64 bits; durations use Go syntax.
type TokenConfig struct {
	Name           string `toml:"Name"`
	Symbol         string `toml:"Symbol"`
	Decimals       uint8  `toml:"Decimals"`
	TransferFee    string `toml:"TransferFee"`
	MinBurnAmount  string `toml:"MinBurnAmount,omitempty"`
	MintingAccount string `toml:"MintingAccount"`
	TxWindow       string `toml:"TxWindow,omitempty"`
	PermittedDrift string `toml:"PermittedDrift,omitempty"`
	MaxMemoLength  int    `toml:"MaxMemoLength,omitempty"`
	MaxPageSize    uint64 `toml:"MaxPageSize,omitempty"`
	DedupCapacity  int    `toml:"DedupCapacity,omitempty"`
}

// AllocationConfig seeds one account balance at first start.
type AllocationConfig struct {
	Account string `toml:"Account"`
	Amount  string `toml:"Amount"`
}

// Load loads the configuration from the given path, writing a default file
// first when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = "127.0.0.1:8081"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./ledger-data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress: "127.0.0.1:8081",
		DataDir:       "./ledger-data",
		Environment:   "local",
		Token: TokenConfig{
			Name:           "Local Token",
			Symbol:         "LCL",
			Decimals:       8,
			TransferFee:    "10",
			MintingAccount: hex.EncodeToString([]byte("minting-account")),
		},
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration without building ledger parameters.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token.Name) == "" {
		return fmt.Errorf("config: Token.Name required")
	}
	if strings.TrimSpace(c.Token.Symbol) == "" {
		return fmt.Errorf("config: Token.Symbol required")
	}
	if _, err := ParseAmount(c.Token.TransferFee); err != nil {
		return fmt.Errorf("config: Token.TransferFee: %w", err)
	}
	if c.Token.MinBurnAmount != "" {
		if _, err := ParseAmount(c.Token.MinBurnAmount); err != nil {
			return fmt.Errorf("config: Token.MinBurnAmount: %w", err)
		}
	}
	if _, err := ParseAccount(c.Token.MintingAccount); err != nil {
		return fmt.Errorf("config: Token.MintingAccount: %w", err)
	}
	for _, dur := range []struct {
		name, value string
	}{
		{"Token.TxWindow", c.Token.TxWindow},
		{"Token.PermittedDrift", c.Token.PermittedDrift},
	} {
		if dur.value == "" {
			continue
		}
		if _, err := time.ParseDuration(dur.value); err != nil {
			return fmt.Errorf("config: %s: %w", dur.name, err)
		}
	}
	for i, alloc := range c.Genesis {
		if _, err := ParseAccount(alloc.Account); err != nil {
			return fmt.Errorf("config: Genesis[%d].Account: %w", i, err)
		}
		if _, err := ParseAmount(alloc.Amount); err != nil {
			return fmt.Errorf("config: Genesis[%d].Amount: %w", i, err)
		}
	}
	return nil
}

// LedgerParams converts the token section into ledger parameters.
func (c *Config) LedgerParams() (core.Params, error) {
	if err := c.Validate(); err != nil {
		return core.Params{}, err
	}
	fee, _ := ParseAmount(c.Token.TransferFee)
	minter, _ := ParseAccount(c.Token.MintingAccount)
	params := core.Params{
		TokenName:      c.Token.Name,
		TokenSymbol:    c.Token.Symbol,
		Decimals:       c.Token.Decimals,
		TransferFee:    fee,
		MintingAccount: minter,
		MaxMemoLength:  c.Token.MaxMemoLength,
		MaxPageSize:    c.Token.MaxPageSize,
		DedupCapacity:  c.Token.DedupCapacity,
	}
	if c.Token.MinBurnAmount != "" {
		params.MinBurnAmount, _ = ParseAmount(c.Token.MinBurnAmount)
	}
	if c.Token.TxWindow != "" {
		d, _ := time.ParseDuration(c.Token.TxWindow)
		params.TxWindow = uint64(d)
	}
	if c.Token.PermittedDrift != "" {
		d, _ := time.ParseDuration(c.Token.PermittedDrift)
		params.PermittedDrift = uint64(d)
	}
	return params, nil
}

// GenesisAllocations converts the genesis section into ledger allocations.
func (c *Config) GenesisAllocations() ([]core.GenesisAllocation, error) {
	out := make([]core.GenesisAllocation, 0, len(c.Genesis))
	for i, alloc := range c.Genesis {
		account, err := ParseAccount(alloc.Account)
		if err != nil {
			return nil, fmt.Errorf("config: Genesis[%d].Account: %w", i, err)
		}
		amount, err := ParseAmount(alloc.Amount)
		if err != nil {
			return nil, fmt.Errorf("config: Genesis[%d].Amount: %w", i, err)
		}
		out = append(out, core.GenesisAllocation{Account: account, Amount: amount})
	}
	return out, nil
}

// ParseAmount parses a non-negative decimal token amount.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount required")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must be non-negative", s)
	}
	return v, nil
}

// ParseAccount parses "ownerhex" or "ownerhex:subaccounthex", where the
// subaccount is exactly 32 bytes.
func ParseAccount(s string) (types.Account, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Account{}, fmt.Errorf("account required")
	}
	ownerPart, subPart, hasSub := strings.Cut(s, ":")
	owner, err := hex.DecodeString(ownerPart)
	if err != nil {
		return types.Account{}, fmt.Errorf("invalid account owner %q: %w", ownerPart, err)
	}
	if len(owner) == 0 {
		return types.Account{}, fmt.Errorf("account owner required")
	}
	if !hasSub {
		return types.NewAccount(owner, nil), nil
	}
	sub, err := hex.DecodeString(subPart)
	if err != nil {
		return types.Account{}, fmt.Errorf("invalid subaccount %q: %w", subPart, err)
	}
	if len(sub) != types.SubaccountLength {
		return types.Account{}, fmt.Errorf("subaccount must be %d bytes, got %d", types.SubaccountLength, len(sub))
	}
	var fixed [types.SubaccountLength]byte
	copy(fixed[:], sub)
	return types.NewAccount(owner, &fixed), nil
}
