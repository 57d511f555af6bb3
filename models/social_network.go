package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SocialNetwork is the closed set of networks the sharing flow knows how to
// post to. Adding a network means adding a constant here plus its result
// slot on services.ShareResult.
type SocialNetwork string

const (
	NetworkFacebook SocialNetwork = "facebook"
	NetworkTwitter  SocialNetwork = "twitter"
)

// AllNetworks is the attempted set for a share post.
var AllNetworks = []SocialNetwork{NetworkFacebook, NetworkTwitter}

func (n SocialNetwork) Valid() bool {
	switch n {
	case NetworkFacebook, NetworkTwitter:
		return true
	}
	return false
}

var titleCaser = cases.Title(language.English)

// DisplayName is the human-readable network name, e.g. "Facebook".
func (n SocialNetwork) DisplayName() string {
	return titleCaser.String(string(n))
}

// ActionTitle names the auto-created action for posts to this network.
func (n SocialNetwork) ActionTitle() string {
	return "Post to " + n.DisplayName()
}
