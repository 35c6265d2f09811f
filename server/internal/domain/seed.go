package domain

import (
	"encoding/json"
	"fmt"
	"os"

	"loft-chat/internal/model"
)

// Seed 是服务启动时灌入存储的初始数据。
type Seed struct {
	Space model.Space  `json:"space"`
	Rooms []model.Room `json:"rooms"`
	Users []model.User `json:"users"`
}

// LoadSeed 从指定路径加载种子数据。
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if seed.Space.ID == "" {
		return nil, fmt.Errorf("seed missing space id")
	}
	for _, r := range seed.Rooms {
		if r.SpaceID != seed.Space.ID {
			return nil, fmt.Errorf("room %s belongs to space %s, seed space is %s", r.ID, r.SpaceID, seed.Space.ID)
		}
	}

	return &seed, nil
}
