package assets

import "github.com/spaghettifunk/anima-models/engine/renderer/metadata"

type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to take type specific parameters
	Unload(*metadata.Resource) error
}
