package general

import (
	"fmt"
)

const Version = "0.1.0"

const bannerTemplate = `
---------------------------------------------------
          geyser indexer version %s
---------------------------------------------------
`

func BannerString() string {
	return fmt.Sprintf(bannerTemplate, Version)
}
