package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ValentinKolb/kvsub/lib/cache"
	"github.com/ValentinKolb/kvsub/lib/schema"
)

// passphrase is the admin passphrase the walk-through configures for its cache
const passphrase = "lorem-ipsum"

// walkthrough runs the demo scenario against c and writes a transcript to w
type walkthrough struct {
	ctx context.Context
	w   io.Writer
	c   *cache.Cache
	err error
}

// Run recreates the users sub in c and exercises every record operation on it.
// The first store or encoding error stops the walk-through and is returned.
func Run(ctx context.Context, w io.Writer, c *cache.Cache) error {
	c.SetupPassphrase(passphrase)
	d := &walkthrough{ctx: ctx, w: w, c: c}

	d.step("Does users exist?")
	exists := c.SubExists("users")
	d.print(exists)

	if exists {
		d.step("Deleting users")
		d.print(c.DeleteSub("users", passphrase))
	}

	d.step("Create a new sub called users")
	d.print(c.CreateSub("users", schema.MustNew(
		schema.Col("uid", "INTEGER"),
		schema.Col("name", "TEXT"),
		schema.Col("status", "BOOLEAN"),
	), passphrase))

	d.step("Does users exist now?")
	d.print(c.SubExists("users"))

	users, err := c.Sub("users")
	if err != nil {
		return err
	}

	d.step("All users")
	d.records(users.GetAll(ctx))

	d.step("Set one user")
	d.print(users.Set(ctx, 800099, cache.Record{"name": "Alex", "status": true}))
	d.records(users.GetAll(ctx))

	d.step("Set more users in bulk")
	d.print(users.SetMany(ctx, []cache.KeyValue{
		{Key: 800100, Value: cache.Record{"name": "Becky", "status": false}},
		{Key: 800209, Value: cache.Record{"name": "Cockney", "status": true}},
		{Key: 803333, Value: cache.Record{"name": "Doodle", "status": true}},
	}))
	d.records(users.GetAll(ctx))

	d.step("Get some users")
	d.records(users.GetMany(ctx, cache.KeysOf(800099, 800209)))

	d.step("Get one user")
	d.record(users.Get(ctx, 800100))

	d.step("Get a user that does not exist")
	d.record(users.Get(ctx, 999999))

	d.step("Get users of which only some exist")
	d.records(users.GetMany(ctx, cache.KeysOf(100000, 800209)))

	d.step("Set a user with a wrong type")
	d.print(users.Set(ctx, 800555, cache.Record{"name": 42, "status": true}))

	d.step("Unset one user")
	d.print(users.Unset(ctx, 800099))
	d.records(users.GetAll(ctx))

	d.step("Unset several users")
	d.print(users.UnsetMany(ctx, cache.KeysOf(800209, 800100)))
	d.records(users.GetAll(ctx))

	d.step("Add more users and flush them all")
	d.print(users.SetMany(ctx, []cache.KeyValue{
		{Key: 800100, Value: cache.Record{"name": "Eerie", "status": false}},
		{Key: 800209, Value: cache.Record{"name": "Fellman", "status": false}},
		{Key: 803333, Value: cache.Record{"name": "Gooliver", "status": true}},
	}))
	d.records(users.GetAll(ctx))
	d.print(users.UnsetAll(ctx))
	d.records(users.GetAll(ctx))

	return d.err
}

func (d *walkthrough) step(title string) {
	if d.err == nil {
		fmt.Fprintf(d.w, "\n%s\n", title)
	}
}

// print writes a plain result, a trailing error is recorded instead
func (d *walkthrough) print(v any, errs ...error) {
	if d.err != nil {
		return
	}
	for _, err := range errs {
		if err != nil {
			d.err = err
			return
		}
	}
	fmt.Fprintln(d.w, v)
}

// record writes r as JSON, null for a miss
func (d *walkthrough) record(r cache.Record, err error) {
	d.json(r, err)
}

func (d *walkthrough) records(rs []cache.Record, err error) {
	if rs == nil {
		rs = []cache.Record{}
	}
	d.json(rs, err)
}

func (d *walkthrough) json(v any, err error) {
	if d.err != nil {
		return
	}
	if err != nil {
		d.err = err
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		d.err = err
		return
	}
	fmt.Fprintln(d.w, string(out))
}
