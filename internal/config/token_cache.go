package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fivetwenty-io/schematics-client/internal/auth"
	"github.com/fivetwenty-io/schematics-client/internal/constants"
	"gopkg.in/yaml.v3"
)

// tokenCache is the on-disk layout: one token per key.
type tokenCache struct {
	Tokens map[string]*auth.Token `yaml:"tokens"`
}

// FileTokenPersister keeps tokens in a YAML file readable only by the owner.
type FileTokenPersister struct {
	path  string
	mutex sync.Mutex
}

// NewFileTokenPersister creates a persister backed by path.
func NewFileTokenPersister(path string) *FileTokenPersister {
	return &FileTokenPersister{path: path}
}

// Path returns the cache file location.
func (p *FileTokenPersister) Path() string {
	return p.path
}

// LoadToken returns the token saved under key.
func (p *FileTokenPersister) LoadToken(key string) (*auth.Token, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	cache, err := p.read()
	if err != nil {
		return nil, err
	}

	token, ok := cache.Tokens[key]
	if !ok || token == nil {
		return nil, fmt.Errorf("%w: no token for %s", constants.ErrTokenCacheNotFound, key)
	}

	return token, nil
}

// SaveToken stores token under key, keeping tokens saved under other keys.
func (p *FileTokenPersister) SaveToken(key string, token *auth.Token) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	cache, err := p.read()
	if err != nil && !errors.Is(err, constants.ErrTokenCacheNotFound) {
		return err
	}

	if cache.Tokens == nil {
		cache.Tokens = make(map[string]*auth.Token)
	}

	cache.Tokens[key] = token

	data, err := yaml.Marshal(cache)
	if err != nil {
		return fmt.Errorf("encoding token cache: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(p.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating token cache directory: %w", err)
	}

	temp := p.path + ".tmp"

	err = os.WriteFile(temp, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing token cache: %w", err)
	}

	err = os.Rename(temp, p.path)
	if err != nil {
		_ = os.Remove(temp)

		return fmt.Errorf("replacing token cache: %w", err)
	}

	return nil
}

func (p *FileTokenPersister) read() (*tokenCache, error) {
	cache := &tokenCache{}

	info, err := os.Stat(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return cache, fmt.Errorf("%w: %s", constants.ErrTokenCacheNotFound, p.path)
	}

	if err != nil {
		return cache, fmt.Errorf("reading token cache: %w", err)
	}

	if !info.Mode().IsRegular() {
		return cache, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, p.path)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return cache, fmt.Errorf("reading token cache: %w", err)
	}

	err = yaml.Unmarshal(data, cache)
	if err != nil {
		return &tokenCache{}, fmt.Errorf("decoding token cache: %w", err)
	}

	return cache, nil
}
