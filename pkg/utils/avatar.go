package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const gravatarBase = "https://www.gravatar.com/avatar/"

// AvatarURL points at the Gravatar identicon for email at the given pixel size.
func AvatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%s%s?d=identicon&s=%d", gravatarBase, hex.EncodeToString(sum[:]), size)
}
