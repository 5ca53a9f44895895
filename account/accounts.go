package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/idgen"
	"garmentflow/persistence"
	"garmentflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = idgen.NewWorker()

	ErrInvalidPassword = &bizerror.ErrBadParam{Cause: errors.New("invalid password")}

	CreateUserFunc            = CreateUser
	QueryUsersFunc            = QueryUsers
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
	QueryUserIDsByAreasFunc   = QueryUserIDsByAreas
	AuthenticateFunc          = Authenticate
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// Authenticate looks up the user owning the name and password.
func Authenticate(ctx context.Context, name, password string) (*session.Identity, error) {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := db.Where(&User{Name: name, Secret: HashSha256(password)}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	return &session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Area: user.Area}, nil
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	user := User{}
	if err := db.Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Update("secret", HashSha256(u.NewSecret)).Error
}

func QueryUsers(s *session.Session) ([]UserInfo, error) {
	users := []UserInfo{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&User{}).Order("name ASC").Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser is restricted to the admin area.
func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.InArea(domain.AreaAdmin) {
		return nil, bizerror.ErrForbidden
	}
	if !c.Area.Valid() {
		return nil, bizerror.BadParam("unknown area '" + string(c.Area) + "'")
	}
	return createUser(persistence.ActiveDataSourceManager.GormDB(s.Context), c, userIdWorker)
}

// SeedUser creates the user when no user of that name exists yet.
func SeedUser(db *gorm.DB, c *UserCreation) (*UserInfo, error) {
	existed := User{}
	err := db.Where(&User{Name: c.Name}).First(&existed).Error
	if err == nil {
		return &UserInfo{ID: existed.ID, Name: existed.Name, Nickname: existed.Nickname, Area: existed.Area}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return createUser(db, c, userIdWorker)
}

func createUser(db *gorm.DB, c *UserCreation, worker *sonyflake.Sonyflake) (*UserInfo, error) {
	user := User{ID: idgen.NextID(worker), Name: c.Name, Nickname: c.Nickname, Area: c.Area, Secret: HashSha256(c.Secret)}
	if err := db.Create(&user).Error; err != nil {
		if persistence.IsUniqueViolation(err) {
			return nil, bizerror.Conflict("user '" + c.Name + "' already exists")
		}
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Area: user.Area}, nil
}

// QueryUserIDsByAreas returns the ids of users in any of the areas, excluding the given user.
func QueryUserIDsByAreas(tx *gorm.DB, excluding types.ID, areas ...domain.Area) ([]types.ID, error) {
	if len(areas) == 0 {
		return []types.ID{}, nil
	}
	var users []User
	q := tx.Select("id").Where("area IN (?)", areas)
	if excluding != 0 {
		q = q.Where("id <> ?", excluding)
	}
	if err := q.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}
