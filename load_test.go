// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package depgraph

import (
	"testing"
)

func TestLoadInstalled(t *testing.T) {
	lc := NewLocalClient()
	lc.AddInstalled(mustDist(t, "fabric", "0.9.1", map[string][]string{"": {"pycrypto"}}))
	lc.AddInstalled(mustDist(t, "pycrypto", "2.1", nil))
	lc.AddInstalled(mustDist(t, "virtualenv", "1.4.0", nil))
	g := mustGraph(t, lc)

	for _, name := range []string{"fabric", "pycrypto", "virtualenv"} {
		if !g.HasPackage(name) {
			t.Errorf("HasPackage(%q) = false", name)
		}
		n := g.nodes[name]
		if n.installed == nil || n.action != actionNone || n.next != nil {
			t.Errorf("node %q not in steady state: %+v", name, n)
		}
	}
	if g.HasPackage("paramiko") {
		t.Error("HasPackage(paramiko) = true")
	}

	if rs := g.edges["pycrypto"]["fabric"]; len(rs) != 1 || rs[0].Name != "pycrypto" {
		t.Errorf("edge pycrypto <- fabric: got %v", rs)
	}
}

func TestLoadDropsUnknownRequirements(t *testing.T) {
	lc := NewLocalClient()
	lc.AddInstalled(mustDist(t, "fabric", "0.9.1", map[string][]string{"": {"pycrypto", "paramiko"}}))
	g := mustGraph(t, lc)

	// paramiko is not installed, so no node and no edge may exist for
	// it.
	if g.HasPackage("paramiko") {
		t.Error("node created for uninstalled requirement")
	}
	if _, ok := g.edges["paramiko"]; ok {
		t.Error("edge recorded for uninstalled requirement")
	}
}

func TestLoadExtras(t *testing.T) {
	lc := NewLocalClient()
	// alice requires bob with the "tls" extra enabled; that extra
	// pulls in carol, which is installed. dave is what the extra would
	// want but is not installed, so it is dropped.
	lc.AddInstalled(mustDist(t, "alice", "1.0", map[string][]string{"": {"bob[tls]"}}))
	lc.AddInstalled(mustDist(t, "bob", "1.0", map[string][]string{
		"":    {},
		"tls": {"carol>=1.0", "dave"},
	}))
	lc.AddInstalled(mustDist(t, "carol", "1.5", nil))
	g := mustGraph(t, lc)

	// The extra's requirement shows up as an indirect edge from the
	// package that enabled the extra.
	if rs := g.edges["carol"]["alice"]; len(rs) != 1 || rs[0].Name != "carol" {
		t.Errorf("edge carol <- alice: got %v", rs)
	}
	if _, ok := g.edges["dave"]; ok {
		t.Error("edge recorded for uninstalled extra requirement")
	}
	// The plain requirement edge is recorded too.
	if rs := g.edges["bob"]["alice"]; len(rs) != 1 {
		t.Errorf("edge bob <- alice: got %v", rs)
	}
}
