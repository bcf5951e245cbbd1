package saltapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// defaultTarget substitutes the match-all glob for empty target expressions.
func defaultTarget(target string) string {
	if strings.TrimSpace(target) == "" {
		return "*"
	}
	return target
}

// MinionStatus asks the master for the reachability of every registered
// minion (runner manage.status) and flattens the up and down lists into a
// single minion id to reachability map.
func (c *Client) MinionStatus(ctx context.Context) (map[string]bool, error) {
	ret, err := c.run(ctx, runRequest{Client: "runner", Fun: "manage.status"})
	if err != nil {
		return nil, err
	}
	if !ret.IsObject() {
		return nil, newError(KindProtocol, nil, "unexpected manage.status payload of type %s", ret.Type)
	}
	status := map[string]bool{}
	for _, id := range ret.Get("up").Array() {
		status[id.String()] = true
	}
	for _, id := range ret.Get("down").Array() {
		status[id.String()] = false
	}
	return status, nil
}

// Ping runs test.ping against target. Each minion that answered maps to true;
// anything else salt-api reports for a minion (timeout markers, error
// strings) maps to false rather than being dropped. An empty target means
// all minions.
func (c *Client) Ping(ctx context.Context, target string) (map[string]bool, error) {
	ret, err := c.run(ctx, runRequest{Client: "local", Fun: "test.ping", Target: defaultTarget(target)})
	if err != nil {
		return nil, err
	}
	if !ret.IsObject() {
		return nil, newError(KindProtocol, nil, "unexpected test.ping payload of type %s", ret.Type)
	}
	reachable := map[string]bool{}
	ret.ForEach(func(key, value gjson.Result) bool {
		reachable[key.String()] = value.Type == gjson.True
		return true
	})
	return reachable, nil
}

// Grains fetches grains.items for a single minion. A minion that is unknown
// to the master or did not respond yields a not_found error.
func (c *Client) Grains(ctx context.Context, minionID string) (map[string]any, error) {
	if strings.TrimSpace(minionID) == "" {
		return nil, fmt.Errorf("minion id must not be empty")
	}
	ret, err := c.run(ctx, runRequest{Client: "local", Fun: "grains.items", Target: minionID})
	if err != nil {
		return nil, err
	}
	if !ret.IsObject() {
		return nil, newError(KindProtocol, nil, "unexpected grains.items payload of type %s", ret.Type)
	}

	// Minion ids are frequently FQDNs; iterating sidesteps gjson's dotted
	// path syntax.
	var grains gjson.Result
	ret.ForEach(func(key, value gjson.Result) bool {
		if key.String() == minionID {
			grains = value
			return false
		}
		return true
	})

	// Salt reports an unreachable minion either by omitting it or by mapping
	// it to false.
	if !grains.Exists() || grains.Type == gjson.False || grains.Type == gjson.Null {
		return nil, newError(KindNotFound, nil, "minion %q not found or not responding", minionID)
	}
	if !grains.IsObject() {
		return nil, newError(KindProtocol, nil, "unexpected grains payload for minion %q of type %s", minionID, grains.Type)
	}
	items, ok := grains.Value().(map[string]any)
	if !ok {
		return nil, newError(KindProtocol, nil, "grains payload for minion %q did not decode to a map", minionID)
	}
	return items, nil
}

// Execute runs an arbitrary execution module function against target and
// returns each minion's raw result. No allow list is applied here:
// authorization is salt-api's eauth/ACL decision. An empty target means all
// minions; args are forwarded verbatim.
func (c *Client) Execute(ctx context.Context, function, target string, args []string) (map[string]any, error) {
	if strings.TrimSpace(function) == "" {
		return nil, fmt.Errorf("salt function must not be empty")
	}
	ret, err := c.run(ctx, runRequest{Client: "local", Fun: function, Target: defaultTarget(target), Args: args})
	if err != nil {
		return nil, err
	}
	if !ret.IsObject() {
		return nil, newError(KindProtocol, nil, "unexpected %s payload of type %s", function, ret.Type)
	}
	results := map[string]any{}
	ret.ForEach(func(key, value gjson.Result) bool {
		results[key.String()] = value.Value()
		return true
	})
	return results, nil
}
