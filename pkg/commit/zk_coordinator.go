package commit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/zhangyunhao116/fastrand"

	"tablestore/pkg/tserrors"
)

// ZKCoordinator serializes commits across multiple writer processes using
// an ephemeral sequential znode per this repo's own ZooKeeper membership
// recipe: create a sequential child, hold the lock once that child has the
// lowest sequence number among its siblings, and poll with jittered backoff
// otherwise rather than blocking on a single watch (bounded backoff keeps a
// disconnected writer from stalling forever on a missed watch event).
type ZKCoordinator struct {
	conn       *zk.Conn
	lockDir    string
	pollBase   time.Duration
	pollJitter time.Duration
}

// NewZKCoordinator connects to the given ZooKeeper ensemble and ensures the
// lock directory exists. lockDir is typically "/tablestore/<table>/commit-lock".
func NewZKCoordinator(servers []string, sessionTimeout time.Duration, lockDir string) (*ZKCoordinator, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("commit: zk connect: %w: %v", tserrors.ErrIoError, err)
	}
	c := &ZKCoordinator{
		conn:       conn,
		lockDir:    lockDir,
		pollBase:   50 * time.Millisecond,
		pollJitter: 150 * time.Millisecond,
	}
	if err := c.ensurePath(lockDir); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the ZooKeeper session.
func (c *ZKCoordinator) Close() {
	c.conn.Close()
}

func (c *ZKCoordinator) ensurePath(path string) error {
	parts := strings.Split(path, "/")
	cur := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = cur + "/" + p
		exists, _, err := c.conn.Exists(cur)
		if err != nil {
			return fmt.Errorf("commit: zk exists %s: %w: %v", cur, tserrors.ErrIoError, err)
		}
		if !exists {
			if _, err := c.conn.Create(cur, nil, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
				return fmt.Errorf("commit: zk create %s: %w: %v", cur, tserrors.ErrIoError, err)
			}
		}
	}
	return nil
}

// Lock creates an ephemeral sequential child of lockDir and blocks until it
// is the lowest-numbered live child, i.e. until this caller holds the lock.
func (c *ZKCoordinator) Lock(ctx context.Context) (func(), error) {
	path, err := c.conn.CreateProtectedEphemeralSequential(c.lockDir+"/lock-", nil, zk.WorldACL(zk.PermAll))
	if err != nil {
		return nil, fmt.Errorf("commit: zk create lock node: %w: %v", tserrors.ErrIoError, err)
	}
	self := path[strings.LastIndex(path, "/")+1:]

	for {
		select {
		case <-ctx.Done():
			c.conn.Delete(path, -1)
			return nil, fmt.Errorf("commit: acquire zk lock: %w", tserrors.ErrCancelled)
		default:
		}

		children, _, err := c.conn.Children(c.lockDir)
		if err != nil {
			c.conn.Delete(path, -1)
			return nil, fmt.Errorf("commit: zk list lock children: %w: %v", tserrors.ErrIoError, err)
		}
		sort.Strings(children)
		if len(children) > 0 && children[0] == self {
			release := func() { c.conn.Delete(path, -1) }
			return release, nil
		}

		jitter := time.Duration(fastrand.Uint32n(uint32(c.pollJitter.Milliseconds()))) * time.Millisecond
		select {
		case <-time.After(c.pollBase + jitter):
		case <-ctx.Done():
			c.conn.Delete(path, -1)
			return nil, fmt.Errorf("commit: acquire zk lock: %w", tserrors.ErrCancelled)
		}
	}
}
