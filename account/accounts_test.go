package account_test

import (
	"context"
	"garmentflow/account"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/persistence"
	"garmentflow/session"
	"garmentflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("accounts", func() {
	var (
		testDatabase *testinfra.TestDatabase
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartTestDatabase("garmentflow")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.TODO()).AutoMigrate(&account.User{}).Error).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	Describe("UpdateBasicAuthSecret", func() {
		It("should be able to update basic auth secret correctly", func() {
			sec := testinfra.BuildSession(1, domain.AreaCorte)
			Expect(testDatabase.DS.GormDB(context.TODO()).Save(&account.User{ID: 1, Name: "aaa", Secret: account.HashSha256("123456")}).Error).To(BeNil())
			Expect(account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{OriginalSecret: "234567", NewSecret: "654321"}, sec)).To(Equal(account.ErrInvalidPassword))
			Expect(account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{OriginalSecret: "123456", NewSecret: "654321"}, sec)).To(BeNil())

			user := account.User{}
			Expect(testDatabase.DS.GormDB(context.TODO()).Where(&account.User{ID: 1}).First(&user).Error).To(BeNil())
			Expect(user.Secret).To(Equal(account.HashSha256("654321")))
		})
	})

	Describe("DisplayName", func() {
		It("should be able to compute display name", func() {
			Expect(account.User{Name: "test", Nickname: "Test"}.DisplayName()).To(Equal("Test"))
			Expect(account.User{Name: "test"}.DisplayName()).To(Equal("test"))
			Expect(account.UserInfo{Name: "test", Nickname: "Test"}.DisplayName()).To(Equal("Test"))
			Expect(account.UserInfo{Name: "test"}.DisplayName()).To(Equal("test"))
		})
	})

	Describe("CreateUser", func() {
		It("should only allow admin users", func() {
			_, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "123456", Area: domain.AreaCorte},
				testinfra.BuildSession(1, domain.AreaCorte))
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})

		It("should reject unknown areas and duplicated names", func() {
			admin := testinfra.BuildSession(1, domain.AreaAdmin)
			_, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "123456", Area: "cocina"}, admin)
			Expect(err).To(HaveOccurred())
			_, ok := err.(*bizerror.ErrBadParam)
			Expect(ok).To(BeTrue())

			u, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "123456", Area: domain.AreaCorte}, admin)
			Expect(err).To(BeNil())
			Expect(u.ID).ToNot(BeZero())
			Expect(u.Area).To(Equal(domain.AreaCorte))

			_, err = account.CreateUser(&account.UserCreation{Name: "ana", Secret: "654321", Area: domain.AreaBordado}, admin)
			_, ok = err.(*bizerror.ErrConflict)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("Authenticate", func() {
		It("should resolve the identity of valid credentials", func() {
			db := testDatabase.DS.GormDB(context.TODO())
			created, err := account.SeedUser(db, &account.UserCreation{Name: "ana", Secret: "123456", Nickname: "Ana", Area: domain.AreaEnvios})
			Expect(err).To(BeNil())

			identity, err := account.Authenticate(context.TODO(), "ana", "123456")
			Expect(err).To(BeNil())
			Expect(*identity).To(Equal(session.Identity{ID: created.ID, Name: "ana", Nickname: "Ana", Area: domain.AreaEnvios}))

			_, err = account.Authenticate(context.TODO(), "ana", "bad-password")
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))

			again, err := account.SeedUser(db, &account.UserCreation{Name: "ana", Secret: "other", Area: domain.AreaCorte})
			Expect(err).To(BeNil())
			Expect(again.ID).To(Equal(created.ID))
		})
	})

	Describe("QueryUserIDsByAreas", func() {
		It("should query users of the areas excluding the given user", func() {
			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Create(&account.User{ID: 1, Name: "a", Area: domain.AreaAdmin}).Error).To(BeNil())
			Expect(db.Create(&account.User{ID: 2, Name: "b", Area: domain.AreaEnvios}).Error).To(BeNil())
			Expect(db.Create(&account.User{ID: 3, Name: "c", Area: domain.AreaCorte}).Error).To(BeNil())
			Expect(db.Create(&account.User{ID: 4, Name: "d", Area: domain.AreaAdmin}).Error).To(BeNil())

			ids, err := account.QueryUserIDsByAreas(db, 0, domain.AreaAdmin, domain.AreaEnvios)
			Expect(err).To(BeNil())
			Expect(ids).To(Equal([]types.ID{1, 2, 4}))

			ids, err = account.QueryUserIDsByAreas(db, 4, domain.AreaAdmin)
			Expect(err).To(BeNil())
			Expect(ids).To(Equal([]types.ID{1}))

			ids, err = account.QueryUserIDsByAreas(db, 0)
			Expect(err).To(BeNil())
			Expect(ids).To(BeEmpty())
		})
	})

	Describe("QueryUsers", func() {
		It("should list users without secrets", func() {
			Expect(testDatabase.DS.GormDB(context.TODO()).Create(&account.User{ID: 1, Name: "aaa", Secret: "x", Area: domain.AreaCalidad}).Error).To(BeNil())
			users, err := account.QueryUsers(testinfra.BuildSession(1, domain.AreaAdmin))
			Expect(err).To(BeNil())
			Expect(users).To(Equal([]account.UserInfo{{ID: 1, Name: "aaa", Area: domain.AreaCalidad}}))
		})
	})
})
