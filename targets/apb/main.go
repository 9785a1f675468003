//go:build tinygo

// Firmware for a core with the GPIO and Timer blocks on its APB bus. It
// answers register commands from the host over the console serial port.
package main

import (
	"machine"
	"time"

	"apbio/core"
	"apbio/mmio"
	"apbio/protocol"
)

var (
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	transport    *protocol.Transport

	msgerrors uint32
)

func main() {
	core.SetDebugWriter(func(s string) { println(s) })

	registry, err := core.NewDeviceRegistry(mmio.GPIOAt(mmio.GPIOBase), mmio.TimerAt(mmio.TimerBase))
	if err != nil {
		// Nothing can be served without the peripherals.
		for {
			println("apb: " + err.Error())
			time.Sleep(time.Second)
		}
	}

	inputBuffer = protocol.NewFifoBuffer(4 * protocol.MessageLengthMax)
	outputBuffer = protocol.NewScratchOutput()

	transport = protocol.NewTransport(outputBuffer, registry.Dispatch)
	transport.SetResetCallback(func() {
		inputBuffer.Reset()
		outputBuffer.Reset()
		core.ClearTrace()
	})
	transport.SetFlushCallback(writeSerial)
	registry.SetResponder(transport)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			readSerial()
			if inputBuffer.Available() > 0 {
				transport.Receive(inputBuffer)
			}
			writeSerial()
		}()

		time.Sleep(10 * time.Microsecond)
	}
}

// readSerial moves whatever the UART has buffered into inputBuffer.
func readSerial() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			msgerrors++
			return
		}
		if inputBuffer.Write([]byte{b}) == 0 {
			// Full; the transport resyncs once space frees up.
			msgerrors++
			return
		}
	}
}

func writeSerial() {
	result := outputBuffer.Result()
	if len(result) == 0 {
		return
	}
	if _, err := machine.Serial.Write(result); err != nil {
		msgerrors++
	}
	outputBuffer.Reset()
}
