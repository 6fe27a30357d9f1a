package auth

import (
	"log"

	"golang.org/x/crypto/bcrypt"
)

var (
	adminUsername = getEnv("ADMIN_USERNAME", "admin")
	// ADMIN_PASSWORD_HASH holds a bcrypt hash; when unset, a hash of the
	// development default password "admin" is generated at startup.
	adminPasswordHash = []byte(getEnv("ADMIN_PASSWORD_HASH", ""))
)

func init() {
	if len(adminPasswordHash) == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("Failed to hash default admin password: ", err)
		}
		adminPasswordHash = hash
		log.Println("ADMIN_PASSWORD_HASH not set; using development default credentials admin/admin")
	}
}

// VerifyAdmin checks a username/password pair against the configured
// admin credentials.
func VerifyAdmin(username, password string) bool {
	if username != adminUsername {
		return false
	}
	return bcrypt.CompareHashAndPassword(adminPasswordHash, []byte(password)) == nil
}
