package environment

import (
	"testing"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/randsrc"
	"github.com/shargri-la/shargri-la/simuser"
)

func TestSetupAssignsOneAccountPerNode(t *testing.T) {
	env := New(randsrc.New(1))
	opts := SetupOptions{UserNum: 20}
	if err := env.Setup(opts); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if len(env.Users) != 20 {
		t.Fatalf("len(Users) = %d, want 20", len(env.Users))
	}
	if env.Blockchain.AccountNum != 20 {
		t.Fatalf("AccountNum = %d, want 20", env.Blockchain.AccountNum)
	}
	if err := core.CheckSingleOwnership(env.Blockchain, 20); err != nil {
		t.Errorf("CheckSingleOwnership() error = %v", err)
	}
}

func TestSetupStrategyPercentagesPickMinimumForEarlyAddresses(t *testing.T) {
	env := New(randsrc.New(1))
	opts := SetupOptions{UserNum: 10, PercentageOfMinimum: 0.5}
	if err := env.Setup(opts); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if env.Users[0].UserType != simuser.Minimum {
		t.Errorf("Users[0].UserType = %v, want Minimum", env.Users[0].UserType)
	}
}

func TestProcessAdvancesSlotAndPreservesInvariants(t *testing.T) {
	env := New(randsrc.New(1))
	if err := env.Setup(SetupOptions{UserNum: 20}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		env.Process()
	}

	if env.Blockchain.Slot != 3 {
		t.Errorf("Slot = %d, want 3", env.Blockchain.Slot)
	}
	if len(env.UserNumMem) != 3 || len(env.MempoolTxMem) != 3 {
		t.Errorf("expected 3 recorded slot snapshots, got %d/%d", len(env.UserNumMem), len(env.MempoolTxMem))
	}
	if err := core.CheckSingleOwnership(env.Blockchain, 20); err != nil {
		t.Errorf("CheckSingleOwnership() error after processing = %v", err)
	}
}

func BenchmarkProcess(b *testing.B) {
	env := New(randsrc.New(1))
	if err := env.Setup(SetupOptions{UserNum: 50}); err != nil {
		b.Fatalf("Setup() error = %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		env.Process()
	}
}
