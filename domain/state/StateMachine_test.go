package state_test

import (
	"garmentflow/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		//         PENDING      DOING         DONE
		// PENDING   -            V (begin)   V (close)
		// DOING     V (cancel)   -           V (finish)
		// DONE      V (reopen)   X			  -
		stateMachine = state.NewStateMachine(
			[]state.State{{Name: "PENDING"}, {Name: "DOING", Category: state.InProcess}, {Name: "DONE", Category: state.Done}},
			[]state.Transition{
				{Name: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}},
				{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
				{Name: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}},
				{Name: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE"}},
				{Name: "reopen", From: state.State{Name: "DONE"}, To: state.State{Name: "PENDING"}},
			})
	})

	Describe("NewStateMachine", func() {
		Context("With given PENDING-DOING-DONE states and transitions", func() {
			It("should create new State Machine successfully", func() {
				Expect(stateMachine).NotTo(BeZero())
				Expect(stateMachine.States).Should(Equal([]state.State{{Name: "PENDING"},
					{Name: "DOING", Category: state.InProcess}, {Name: "DONE", Category: state.Done}}))
				Expect(len(stateMachine.Transitions)).Should(Equal(5))
			})
		})
	})

	Describe("AvailableTransitions", func() {
		Context("With given PENDING-DOING-DONE states and transitions", func() {
			It("should filter transitions by source state", func() {
				Ω(stateMachine.AvailableTransitions("PENDING", "")).Should(Equal([]state.Transition{
					{Name: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}},
					{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
				}))

				Ω(stateMachine.AvailableTransitions("DOING", "")).Should(Equal([]state.Transition{
					{Name: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}},
					{Name: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE"}},
				}))

				Ω(stateMachine.AvailableTransitions("DONE", "")).Should(Equal([]state.Transition{
					{Name: "reopen", From: state.State{Name: "DONE"}, To: state.State{Name: "PENDING"}},
				}))

				Ω(len(stateMachine.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
			})

			It("should filter transitions by target state", func() {
				Ω(stateMachine.AvailableTransitions("", "DONE")).Should(Equal([]state.Transition{
					{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
					{Name: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE"}},
				}))
				Ω(stateMachine.AvailableTransitions("DONE", "DOING")).Should(BeEmpty())
			})
		})
	})

	Describe("CanTransit", func() {
		It("should only allow declared transitions", func() {
			Expect(stateMachine.CanTransit("PENDING", "DOING")).To(BeTrue())
			Expect(stateMachine.CanTransit("DONE", "PENDING")).To(BeTrue())
			Expect(stateMachine.CanTransit("DONE", "DOING")).To(BeFalse())
			Expect(stateMachine.CanTransit("", "DOING")).To(BeFalse())
			Expect(stateMachine.CanTransit("PENDING", "")).To(BeFalse())
		})
	})

	Describe("FindState", func() {
		It("should find declared states only", func() {
			s, found := stateMachine.FindState("DONE")
			Expect(found).To(BeTrue())
			Expect(s.Category).To(Equal(state.Done))

			_, found = stateMachine.FindState("UNKNOWN")
			Expect(found).To(BeFalse())
		})
	})
})
