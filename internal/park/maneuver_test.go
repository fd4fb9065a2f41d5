package park

import (
	"strings"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/san-kum/autopark/internal/control"
	"github.com/san-kum/autopark/internal/vehicle"
)

var _ = ginkgo.Describe("Maneuver", func() {
	var (
		params   Params
		sensor   *scriptedSensor
		motor    *recordingMotor
		clock    *fakeClock
		sink     *lineSink
		observer *recordingObserver
	)

	newManeuver := func(gains control.Gains) *Maneuver {
		m := New(params, gains, Rig{Sensor: sensor, Motor: motor, Clock: clock, Diagnostics: sink})
		m.AddObserver(observer)
		return m
	}

	ginkgo.BeforeEach(func() {
		params = DefaultParams()
		sensor = newScriptedSensor()
		motor = &recordingMotor{}
		clock = &fakeClock{}
		sink = &lineSink{}
		observer = &recordingObserver{}
	})

	ginkgo.Describe("SeekingSpace", func() {
		ginkgo.It("confirms a wide gap after the configured number of ticks", func() {
			params.GapDistance = 200000
			params.ConfirmTicks = 3
			sensor.with(vehicle.Left, 250000, 250000, 250000, 250000)
			m := newManeuver(control.Gains{})

			Expect(m.Advance()).To(Equal(SeekingSpace))
			Expect(m.Advance()).To(Equal(SeekingSpace))
			Expect(m.Advance()).To(Equal(Rotating))

			Expect(observer.ticks).To(HaveLen(3))
			for _, rec := range observer.ticks[:2] {
				Expect(rec.Output).To(Equal(0))
				Expect(rec.Error).To(Equal(0))
			}
			Expect(observer.ticks[2].Found).To(BeTrue())
			Expect(observer.transitions).To(Equal([]string{"seeking_space->rotating"}))

			Expect(motor.commands).To(Equal([]string{"diff 300 300", "diff 300 300", "stop"}))
			Expect(clock.delays).To(Equal([]int{DefaultSettleDelay}))
		})

		ginkgo.It("restarts the confirmation count on a single narrow reading", func() {
			params.GapDistance = 1000
			params.ConfirmTicks = 30
			readings := append([]int{2000}, repeat(2000, 29)...)
			readings = append(readings, 100)
			readings = append(readings, repeat(2000, 30)...)
			sensor.with(vehicle.Left, readings...)
			m := newManeuver(control.Gains{Kd: 0.2})

			for i := 0; i < 29; i++ {
				Expect(m.Advance()).To(Equal(SeekingSpace))
			}
			Expect(m.GapTicks()).To(Equal(29))

			Expect(m.Advance()).To(Equal(SeekingSpace))
			Expect(m.GapTicks()).To(Equal(0))

			for i := 0; i < 29; i++ {
				Expect(m.Advance()).To(Equal(SeekingSpace))
			}
			Expect(m.Advance()).To(Equal(Rotating))
			Expect(m.Ticks()).To(Equal(60))
		})

		ginkgo.It("retries an invalid reading once before using it", func() {
			params.ConfirmTicks = 100
			sensor.with(vehicle.Left, 30000, vehicle.InvalidReading, 30000)
			m := newManeuver(control.Gains{})

			m.Advance()
			Expect(sensor.calls[vehicle.Left]).To(Equal(3))
			Expect(observer.ticks[0].Raw).To(Equal(30000))
		})

		ginkgo.It("forces zero correction once the vehicle has tracked steadily", func() {
			params.ConfirmTicks = 100
			readings := append([]int{10000}, repeat(10000, 5)...)
			readings = append(readings, 7600)
			sensor.with(vehicle.Left, readings...)
			m := newManeuver(control.Gains{Kp: 1})

			for i := 0; i < 5; i++ {
				m.Advance()
			}
			Expect(m.Stabilized()).To(BeTrue())

			m.Advance()
			last := observer.ticks[len(observer.ticks)-1]
			Expect(last.Steering).To(Equal(control.MVMax))
			Expect(last.Output).To(Equal(0))
			Expect(last.Stabilized).To(BeTrue())
			Expect(motor.commands[len(motor.commands)-1]).To(Equal("diff 300 300"))
		})

		ginkgo.It("resets the stability count on a large correction", func() {
			params.ConfirmTicks = 100
			readings := append([]int{10000}, repeat(10000, 4)...)
			readings = append(readings, 7600, 10000)
			sensor.with(vehicle.Left, readings...)
			m := newManeuver(control.Gains{Kp: 1})

			for i := 0; i < 4; i++ {
				m.Advance()
			}
			m.Advance()
			Expect(m.Stabilized()).To(BeFalse())
			Expect(motor.commands[len(motor.commands)-1]).To(Equal("diff 500 100"))

			m.Advance()
			Expect(observer.ticks[len(observer.ticks)-1].Stabilized).To(BeFalse())
		})

		ginkgo.It("absorbs a sensor glitch by reinitializing the controller", func() {
			params.ConfirmTicks = 100
			sensor.with(vehicle.Left, 30000, 30000, 90000, 60000, 60000)
			m := newManeuver(control.Gains{Kp: 1, Kd: 1})

			m.Advance()
			m.Advance()
			rec := observer.ticks[1]
			Expect(rec.Reinit).To(BeTrue())
			Expect(rec.Output).To(Equal(0))
			Expect(m.Steering.Target()).To(Equal(60000))
			Expect(m.State()).To(Equal(SeekingSpace))
		})

		ginkgo.It("emits one telemetry line per steering tick", func() {
			params.ConfirmTicks = 100
			sensor.with(vehicle.Left, 1000, 800)
			m := newManeuver(control.Gains{Kp: 0.5})

			m.Advance()
			Expect(sink.lines).To(ContainElement("100,100,50\n"))
		})
	})

	ginkgo.Describe("open-loop phases", func() {
		var ctrl *gomock.Controller

		ginkgo.BeforeEach(func() {
			ctrl = gomock.NewController(ginkgo.GinkgoT())
		})

		ginkgo.It("pivots and reverses with the configured timings", func() {
			mockMotor := vehicle.NewMockMotor(ctrl)
			mockClock := vehicle.NewMockClock(ctrl)
			gomock.InOrder(
				mockMotor.EXPECT().MoveForward(300),
				mockClock.EXPECT().Delay(0),
				mockMotor.EXPECT().Stop(),
				mockClock.EXPECT().Delay(500),
				mockMotor.EXPECT().SetDifferentialSpeed(0, -1000),
				mockClock.EXPECT().Delay(480),
				mockMotor.EXPECT().Stop(),
				mockClock.EXPECT().Delay(500),
				mockMotor.EXPECT().MoveReverse(300),
				mockClock.EXPECT().Delay(1000),
				mockMotor.EXPECT().Stop(),
			)

			m := New(params, control.Gains{}, Rig{Sensor: sensor, Motor: mockMotor, Clock: mockClock})
			m.AddObserver(observer)
			m.state = Rotating

			Expect(m.Advance()).To(Equal(Reversing))
			Expect(m.Advance()).To(Equal(Done))
			Expect(observer.transitions).To(Equal([]string{"rotating->reversing", "reversing->done"}))
		})

		ginkgo.It("pivots the other way when parking on the right", func() {
			params.Side = vehicle.Right
			mockMotor := vehicle.NewMockMotor(ctrl)
			mockMotor.EXPECT().MoveForward(gomock.Any()).AnyTimes()
			mockMotor.EXPECT().Stop().AnyTimes()
			mockMotor.EXPECT().SetDifferentialSpeed(-1000, 0).Times(1)

			m := New(params, control.Gains{}, Rig{Sensor: sensor, Motor: mockMotor, Clock: clock})
			m.state = Rotating
			m.Advance()
		})

		ginkgo.It("stops reversing on the rear distance threshold", func() {
			sensor.with(vehicle.Rear, 5000, 3000, vehicle.InvalidReading, vehicle.InvalidReading, 900)
			m := newManeuver(control.Gains{})
			m.Reverse = RearDistance{Sensor: sensor, Retry: vehicle.DefaultRetryPolicy(), StopDistance: 1000}
			m.state = Reversing

			Expect(m.Advance()).To(Equal(Done))
			Expect(clock.delays).To(Equal([]int{50, 50, 50}))
			Expect(motor.commands).To(Equal([]string{"reverse 300", "stop"}))
		})

		ginkgo.It("gives up reversing when the rear threshold is never reached", func() {
			sensor.with(vehicle.Rear, 2000000)
			m := newManeuver(control.Gains{})
			m.Reverse = RearDistance{Sensor: sensor, Retry: vehicle.DefaultRetryPolicy(), StopDistance: 1000}
			m.state = Reversing

			Expect(m.Advance()).To(Equal(Done))
			Expect(clock.delays).To(HaveLen(DefaultMaxPolls))
			Expect(sensor.calls[vehicle.Rear]).To(Equal(DefaultMaxPolls))
			Expect(motor.commands).To(Equal([]string{"reverse 300", "stop"}))
		})

		ginkgo.It("honours an explicit poll limit", func() {
			sensor.with(vehicle.Rear, 2000000)
			m := newManeuver(control.Gains{})
			m.Reverse = RearDistance{Sensor: sensor, StopDistance: 1000, PollInterval: 10, MaxPolls: 4}
			m.state = Reversing

			Expect(m.Advance()).To(Equal(Done))
			Expect(clock.delays).To(Equal([]int{10, 10, 10, 10}))
		})

		ginkgo.It("uses a custom rotation check", func() {
			m := newManeuver(control.Gains{})
			m.Rotation = Timed{Duration: 123}
			m.state = Rotating
			m.Advance()
			Expect(clock.delays).To(ContainElement(123))
			Expect(clock.delays).NotTo(ContainElement(DefaultRotateDelay))
		})
	})

	ginkgo.Describe("Run", func() {
		ginkgo.It("sequences every phase and ends stationary", func() {
			params.ConfirmTicks = 2
			sensor.with(vehicle.Left, 30000, 30000, 250000, 250000)
			m := newManeuver(control.Gains{Kd: 0.2})

			m.Run()

			Expect(m.State()).To(Equal(Done))
			Expect(observer.transitions).To(Equal([]string{
				"seeking_space->rotating",
				"rotating->reversing",
				"reversing->done",
			}))
			Expect(motor.commands[len(motor.commands)-1]).To(Equal("stop"))
			Expect(clock.total()).To(Equal(DefaultSettleDelay + DefaultForwardDelay + 2*DefaultStopDelay +
				DefaultRotateDelay + DefaultReverseDuration))

			status := strings.Join(sink.lines, "")
			Expect(status).To(ContainSubstring("1. Starting space finding"))
			Expect(status).To(ContainSubstring("2. Executing rotation"))
			Expect(status).To(ContainSubstring("3. Executing backward maneuver"))
			Expect(status).To(ContainSubstring("Parking complete."))
		})

		ginkgo.It("can run again after Reset", func() {
			params.ConfirmTicks = 1
			sensor.with(vehicle.Left, 30000, 250000)
			m := newManeuver(control.Gains{})
			m.Run()

			m.Reset()
			Expect(m.State()).To(Equal(SeekingSpace))
			Expect(m.Ticks()).To(Equal(0))
			m.Run()
			Expect(m.State()).To(Equal(Done))
		})
	})

	ginkgo.Describe("State", func() {
		ginkgo.It("round-trips through its name", func() {
			for _, s := range []State{SeekingSpace, Rotating, Reversing, Done} {
				parsed, err := ParseState(s.String())
				Expect(err).NotTo(HaveOccurred())
				Expect(parsed).To(Equal(s))
			}
			_, err := ParseState("parked")
			Expect(err).To(HaveOccurred())
		})
	})
})
