package vrm

import (
	"fmt"
	"log"
	"os"

	"github.com/qmuntal/gltf"
	"gopkg.in/yaml.v2"
)

// BoneMapping assigns a humanoid bone name to a node by name, overriding
// whatever the VRM metadata declares. Useful for sources with a broken or
// incomplete humanoid block.
type BoneMapping struct {
	Bone     string `yaml:"bone"`
	NodeName string `yaml:"nodeName"`
}

type MappingConfig struct {
	BoneMappings []*BoneMapping `yaml:"boneMappings"`
}

func LoadMappingConfig(path string) (*MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load bone mapping %s: %w", path, err)
	}
	var conf MappingConfig
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("parse bone mapping %s: %w", path, err)
	}
	return &conf, nil
}

// Apply resolves node names and overwrites entries of the bone map.
// Mappings naming a node that does not exist are logged and skipped.
func (conf *MappingConfig) Apply(doc *gltf.Document, bones map[string]int) {
	nodeMap := map[string]int{}
	for id, node := range doc.Nodes {
		nodeMap[node.Name] = id
	}

	for _, mapping := range conf.BoneMappings {
		if id, ok := nodeMap[mapping.NodeName]; ok {
			bones[mapping.Bone] = id
		} else {
			log.Println("Bone node not found:", mapping.NodeName)
		}
	}
}
