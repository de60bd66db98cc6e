package assets

import "github.com/spaghettifunk/regfile/engine/renderer/metadata"

type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) // Resource.Data carries the loader specific value
	Unload(*metadata.Resource) error
}
