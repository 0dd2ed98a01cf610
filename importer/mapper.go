package importer

import (
	"fmt"

	"daytally/entry"
)

type Mapper interface {
	Name() string
	Map(record Record) (*entry.Entry, bool, error)
}

func SupportedMapperNames() []string {
	return []string{"generic"}
}

func MapperByName(name string) (Mapper, error) {
	switch normalizeHeader(name) {
	case "generic":
		return &GenericMapper{}, nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %s", name)
	}
}
