package module

import (
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	perr "telescrape/internal/platform/errors"
)

// ChannelList is the parsed channels file: active channels plus the
// commented-out ones kept for reference
type ChannelList struct {
	Channels []string `koanf:"channels"`
	Comments []string `koanf:"comments"`
}

// LoadChannels reads the channels JSON file
func LoadChannels(path string) (ChannelList, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return ChannelList{}, perr.InvalidArgf("load channels file %s: %v", path, err)
	}

	var cl ChannelList
	if err := k.Unmarshal("", &cl); err != nil {
		return ChannelList{}, perr.InvalidArgf("parse channels file %s: %v", path, err)
	}
	return cl, nil
}
