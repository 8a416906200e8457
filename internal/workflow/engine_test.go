package workflow_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/manno/archflow/internal/design"
	"github.com/manno/archflow/internal/gateway"
	"github.com/manno/archflow/internal/session"
	"github.com/manno/archflow/internal/workflow"
)

func TestWorkflow(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workflow Suite")
}

type fakeGateway struct {
	result gateway.Result
	err    error
	calls  int
	args   map[string]any
}

func (f *fakeGateway) CallTool(ctx context.Context, logicalName string, arguments map[string]any) (gateway.Result, error) {
	f.calls++
	f.args = arguments
	return f.result, f.err
}

// brokenStore fails every Load of one key, simulating store I/O trouble.
type brokenStore struct {
	*session.MemoryStore
	failKey string
	failErr error
}

func (s *brokenStore) Load(ctx context.Context, scope session.Scope, key string, out any) error {
	if key == s.failKey {
		return s.failErr
	}
	return s.MemoryStore.Load(ctx, scope, key, out)
}

type fakeDesign struct {
	out design.DesignOutput
	err error
}

func (f *fakeDesign) GenerateOptions(ctx context.Context, requirementsMarkdown string) (design.DesignOutput, error) {
	return f.out, f.err
}

type fakeCompare struct {
	out design.Comparison
	err error
}

func (f *fakeCompare) CompareOptions(ctx context.Context, optionsJSON string) (design.Comparison, error) {
	return f.out, f.err
}

type fakeDiagram struct {
	code string
	err  error
}

func (f *fakeDiagram) GenerateDiagram(ctx context.Context, architectureJSON string) (string, error) {
	return f.code, f.err
}

type fakeStaffing struct {
	plan design.StaffingPlan
	err  error
}

func (f *fakeStaffing) GeneratePlan(ctx context.Context, architectureJSON string) (design.StaffingPlan, error) {
	return f.plan, f.err
}

type fakeRefiner struct {
	result design.RefinementResult
	err    error
	calls  int
}

func (f *fakeRefiner) Refine(ctx context.Context, current design.ArchitectureOption, feedback, focusArea string) (design.RefinementResult, error) {
	f.calls++
	return f.result, f.err
}

var _ = Describe("Design Pipeline", func() {
	var (
		ctx      context.Context
		logger   *slog.Logger
		store    *session.MemoryStore
		gw       *fakeGateway
		designer *fakeDesign
		comparer *fakeCompare
		diagram  *fakeDiagram
		staffing *fakeStaffing
		refiner  *fakeRefiner
		engine   *workflow.Engine
		sess     *session.Session
	)

	const (
		memoryID  = "mem-test"
		sessionID = "sess-test"
		actorID   = "alice"
	)

	newEngine := func(opts ...workflow.Option) *workflow.Engine {
		handlers := &workflow.Handlers{
			Gateway:  gw,
			Design:   designer,
			Compare:  comparer,
			Diagram:  diagram,
			Staffing: staffing,
			Refiner:  refiner,
			Logger:   logger,
		}
		e, err := workflow.New(store, handlers, memoryID, logger, opts...)
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
		store = session.NewMemoryStore()

		gw = &fakeGateway{result: gateway.Result{
			Kind:       gateway.ResultPayload,
			StatusCode: 200,
			Body: map[string]any{
				"requirements": map[string]any{
					"project_summary":         "e-commerce platform",
					"functional_requirements": []any{"auth", "payments"},
				},
			},
		}}
		designer = &fakeDesign{out: design.DesignOutput{Options: []design.ArchitectureOption{
			{Name: "Cost-Optimized", Description: "cheap"},
			{Name: "Performance-Optimized", Description: "fast"},
			{Name: "Balanced", Description: "middle"},
		}}}
		comparer = &fakeCompare{out: design.Comparison{
			RecommendedOption:       "Balanced",
			RecommendationRationale: "best trade-off",
		}}
		diagram = &fakeDiagram{code: "graph TB\n  A --> B"}
		staffing = &fakeStaffing{plan: design.StaffingPlan{TeamSize: 5, TotalDurationWeeks: 12}}
		refiner = &fakeRefiner{result: design.RefinementResult{
			RefinedArchitecture: design.ArchitectureOption{Name: "Balanced", Description: "refined"},
			Changes:             []string{"swapped the database"},
			Summary:             "database swap",
		}}

		engine = newEngine()
		sess = session.New(store, session.Scope{
			MemoryID:  memoryID,
			SessionID: sessionID,
			ActorID:   actorID,
		})
	})

	Context("clean run", func() {
		It("walks every step and finishes at finalize", func() {
			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.Errors).To(BeEmpty())
			Expect(state.Degraded).To(BeFalse())
			Expect(state.CurrentStep).To(Equal("finalize"))
			Expect(state.Messages).To(HaveLen(7))
			Expect(state.Messages[len(state.Messages)-1]).To(Equal("Workflow completed successfully"))
		})

		It("auto-selects the recommended option", func() {
			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.Messages).To(ContainElement("Auto-selected recommended option: Balanced"))
			Expect(state.UserSelectionMade).To(BeTrue())

			selected, err := sess.LoadSelectedOption(ctx)
			Expect(err).NotTo(HaveOccurred())
			recommended, err := sess.LoadRecommendedOption(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(selected).To(Equal(recommended))

			data, err := sess.LoadSelectedOptionData(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Name).To(Equal("Balanced"))
		})

		It("persists every step output in the session scope", func() {
			engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			reqs, err := sess.LoadRequirements(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs.ProjectSummary).To(Equal("e-commerce platform"))

			options, err := sess.LoadDesignOptions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(options).To(HaveLen(3))

			code, err := sess.LoadDiagramCode(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(ContainSubstring("graph TB"))

			plan, err := sess.LoadStaffingPlan(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.TeamSize).To(Equal(5))
		})

		It("forwards document metadata to the extraction tool", func() {
			state := engine.Run(ctx, "build me a shop", sessionID, actorID,
				map[string]string{"source": "upload", "filename": "req.pdf"})

			Expect(state.Errors).To(BeEmpty())
			Expect(gw.args).To(HaveKeyWithValue("document_metadata",
				map[string]string{"source": "upload", "filename": "req.pdf"}))
		})

		It("omits the metadata argument when none is given", func() {
			engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(gw.args).NotTo(HaveKey("document_metadata"))
		})

		It("isolates runs by session id", func() {
			engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			other := session.New(store, session.Scope{
				MemoryID:  memoryID,
				SessionID: "sess-other",
				ActorID:   actorID,
			})
			_, err := other.LoadRequirements(ctx)
			Expect(session.IsMissingDependency(err)).To(BeTrue())
		})
	})

	Context("user selection", func() {
		It("honors a selection stored before the run", func() {
			Expect(sess.SaveSelectedOption(ctx, "Cost-Optimized")).To(Succeed())

			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.Errors).To(BeEmpty())
			Expect(state.Messages).NotTo(ContainElement(ContainSubstring("Auto-selected")))
			Expect(state.Messages).To(HaveLen(6))

			data, err := sess.LoadSelectedOptionData(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Name).To(Equal("Cost-Optimized"))
		})
	})

	Context("step failures", func() {
		It("records the failure and still reaches finalize", func() {
			designer.err = fmt.Errorf("model unavailable")

			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.CurrentStep).To(Equal("finalize"))
			Expect(state.Degraded).To(BeTrue())
			Expect(state.Errors[0]).To(ContainSubstring("generate_designs failed"))
			Expect(state.Messages[len(state.Messages)-1]).To(ContainSubstring("step errors"))
		})

		It("cascades missing inputs as per-step errors, not a crash", func() {
			designer.err = fmt.Errorf("model unavailable")

			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			// every downstream step fails on its missing dependency
			Expect(state.Errors).To(HaveLen(5))
			for _, e := range state.Errors[1:] {
				Expect(e).To(ContainSubstring("missing required session value"))
			}
		})

		It("records a store failure on the refinement-request load", func() {
			failing := &brokenStore{
				MemoryStore: store,
				failKey:     session.KeyRefinementRequest,
				failErr:     fmt.Errorf("connection reset"),
			}
			handlers := &workflow.Handlers{
				Gateway:  gw,
				Design:   designer,
				Compare:  comparer,
				Diagram:  diagram,
				Staffing: staffing,
				Refiner:  refiner,
				Logger:   logger,
			}
			e, err := workflow.New(failing, handlers, memoryID, logger)
			Expect(err).NotTo(HaveOccurred())

			state := e.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.CurrentStep).To(Equal("finalize"))
			Expect(state.Errors).To(HaveLen(1))
			Expect(state.Errors[0]).To(ContainSubstring("wait_for_selection failed"))
			Expect(state.Errors[0]).To(ContainSubstring("connection reset"))
			Expect(refiner.calls).To(BeZero())
		})

		It("keeps earlier steps' outputs when a later step fails", func() {
			staffing.err = fmt.Errorf("model unavailable")

			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.Errors).To(HaveLen(1))
			code, err := sess.LoadDiagramCode(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(code).NotTo(BeEmpty())
		})
	})

	Context("refinement", func() {
		It("applies a pending request exactly once on re-run", func() {
			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)
			Expect(state.Errors).To(BeEmpty())

			Expect(sess.SaveRefinementRequest(ctx, design.RefinementRequest{
				Feedback:  "swap the database",
				FocusArea: "cost",
			})).To(Succeed())

			state = engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.Errors).To(BeEmpty())
			Expect(state.Messages).To(ContainElement("Refinement applied: database swap"))
			Expect(refiner.calls).To(Equal(1))
			Expect(state.RefinementRequested).To(BeFalse())

			data, err := sess.LoadSelectedOptionData(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Description).To(Equal("refined"))

			request, exists, err := sess.LoadRefinementRequest(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
			Expect(request.Processed).To(BeTrue())
		})

		It("does not re-apply a processed request on a third run", func() {
			engine.Run(ctx, "build me a shop", sessionID, actorID, nil)
			Expect(sess.SaveRefinementRequest(ctx, design.RefinementRequest{
				Feedback: "swap the database",
			})).To(Succeed())
			engine.Run(ctx, "build me a shop", sessionID, actorID, nil)
			Expect(refiner.calls).To(Equal(1))

			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(refiner.calls).To(Equal(1))
			Expect(state.Errors).To(BeEmpty())
		})

		It("bounds a refinement cycle that never resolves", func() {
			engine = newEngine(workflow.WithMaxRefinePasses(3))
			Expect(sess.SaveRefinementRequest(ctx, design.RefinementRequest{
				Feedback: "swap the database",
			})).To(Succeed())
			refiner.err = fmt.Errorf("model unavailable")

			state := engine.Run(ctx, "build me a shop", sessionID, actorID, nil)

			Expect(state.CurrentStep).To(Equal("finalize"))
			Expect(refiner.calls).To(Equal(3))
			Expect(state.Errors).To(ContainElement(ContainSubstring("refinement cycle exceeded 3 passes")))
		})
	})
})
