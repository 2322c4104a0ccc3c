// Package domain holds the account-level types shared by the transport,
// persistence and session layers.
package domain

// MaxSelectedApps caps how many applications can be aggregated at once.
const MaxSelectedApps = 10

// Application is a tracked app in the analytics account. Identity is the ID;
// name and icon may change without affecting identity.
type Application struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	BundleID    string `json:"bundle_id,omitempty" yaml:"bundle_id,omitempty"`
	PackageName string `json:"package_name,omitempty" yaml:"package_name,omitempty"`
	IconURL     string `json:"icon_url,omitempty" yaml:"icon_url,omitempty"`
}

// SameApp reports whether a and b refer to the same application.
func (a Application) SameApp(b Application) bool {
	return a.ID == b.ID
}

// Platform returns a short label for the store the app is published in.
func (a Application) Platform() string {
	switch {
	case a.BundleID != "" && a.PackageName != "":
		return "iOS+Android"
	case a.BundleID != "":
		return "iOS"
	case a.PackageName != "":
		return "Android"
	default:
		return ""
	}
}

// AppIDs returns the IDs of apps in order.
func AppIDs(apps []Application) []string {
	ids := make([]string, len(apps))
	for i, a := range apps {
		ids[i] = a.ID
	}
	return ids
}

// FindApp returns the last app in apps with the given ID.
func FindApp(apps []Application, id string) (Application, bool) {
	for i := len(apps) - 1; i >= 0; i-- {
		if apps[i].ID == id {
			return apps[i], true
		}
	}
	return Application{}, false
}

// User is the signed-in account.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TokenPair holds the API access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}
