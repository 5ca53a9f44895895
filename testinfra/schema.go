package testinfra

import (
	"context"
	"garmentflow/account"
	"garmentflow/domain"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

// MigrateDomain creates the users table and every reposition domain table.
func MigrateDomain(testDatabase *TestDatabase) {
	db := testDatabase.DS.GormDB(context.Background())
	Expect(db.AutoMigrate(&account.User{}).Error).To(BeNil())
	Expect(domain.AutoMigrate(db)).To(BeNil())
}

// CreateUsers inserts a user per area with ids starting from firstID, returns the ids in area order.
func CreateUsers(testDatabase *TestDatabase, firstID types.ID, areas ...domain.Area) []types.ID {
	db := testDatabase.DS.GormDB(context.Background())
	ids := make([]types.ID, 0, len(areas))
	for i, area := range areas {
		id := firstID + types.ID(i)
		u := account.User{ID: id, Name: "user" + id.String(), Nickname: "User " + id.String(), Area: area}
		Expect(db.Create(&u).Error).To(BeNil())
		ids = append(ids, id)
	}
	return ids
}
