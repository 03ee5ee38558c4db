package main

import (
	"context"
	"time"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/user"
)

// addAdmin updates or creates an Administrator account.
func (cli *commandLine) addAdmin(email, first, last, pwd string) error {
	ctx := context.Background()

	usr := user.User{
		Email:     core.CleanString(email, true /* lower */),
		Role:      user.RoleAdministrator,
		FirstName: core.CleanString(first),
		LastName:  core.CleanString(last),
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr)
	return err
}
