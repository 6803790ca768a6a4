package storage

import (
	"vicinity/internal/domain/accesscontrol"
	"vicinity/internal/domain/businesses"
	"vicinity/internal/domain/pushtokens"
	"vicinity/internal/domain/reviews"
	"vicinity/internal/domain/users"
	"vicinity/internal/infra/dbx"
)

// Container wires every repository to one pool.
type Container struct {
	db            dbx.TxBeginner
	Users         users.Store
	Businesses    businesses.Store
	Reviews       reviews.Store
	AccessControl accesscontrol.Store
	PushTokens    pushtokens.Store
}

func NewContainer(db dbx.TxBeginner) *Container {
	return &Container{
		db:            db,
		Users:         users.NewRepository(db),
		Businesses:    businesses.NewRepository(db),
		Reviews:       reviews.NewRepository(db),
		AccessControl: accesscontrol.NewRepository(db),
		PushTokens:    pushtokens.NewRepository(db),
	}
}

// DB is the pool the repositories share.
func (c *Container) DB() dbx.TxBeginner {
	return c.db
}
