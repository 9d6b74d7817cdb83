package environments

import (
	"regexp"

	"github.com/goliatone/go-appcatalog/objects"
)

// Environment names must start with a letter and may contain word characters
// and dashes.
var environmentNamePattern = regexp.MustCompile(`^[a-zA-Z][\w-]*$`)

// EnvironmentTypeName tags the root object of every environment document.
const EnvironmentTypeName = "catalog.Environment"

// DefaultNetworkDriver is used when neither the caller nor the service
// configuration picks a driver.
const DefaultNetworkDriver = "neutron"

// DefaultNetworkTypes maps network driver names to the object type stamped
// into generated default networks.
var DefaultNetworkTypes = map[string]string{
	"nova":    "catalog.resources.NovaNetwork",
	"neutron": "catalog.resources.NeutronNetwork",
}

// ValidName reports whether the supplied environment name is acceptable.
func ValidName(name string) bool {
	return environmentNamePattern.MatchString(name)
}

func cloneEnvironment(env *Environment) *Environment {
	if env == nil {
		return nil
	}
	cloned := *env
	cloned.Description = objects.Clone(env.Description)
	return &cloned
}

func cloneEnvironmentSlice(src []*Environment) []*Environment {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Environment, len(src))
	for i, env := range src {
		out[i] = cloneEnvironment(env)
	}
	return out
}

// defaultNetworks synthesizes the placeholder network objects attached to a
// fresh environment document.
func defaultNetworks(envName, networkType string) map[string]any {
	network := objects.NewObject(networkType)
	network["name"] = envName + "-network"
	return map[string]any{
		"environment": network,
		"flat":        nil,
	}
}
