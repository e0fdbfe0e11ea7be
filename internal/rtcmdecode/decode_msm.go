package rtcmdecode

import (
	"github.com/gnsslabs/ntrip-rtcm/internal/outsink"
	"github.com/gnsslabs/ntrip-rtcm/internal/rtcmdecode/msm"
)

func decodeMSM7(payload []byte, sink outsink.Sink, gnssName string) error {
	header, err := msm.ParseHeader(payload)
	if err != nil {
		return err
	}
	sats, signals, err := msm.DecodeBodyMSM7(payload, header)
	if err != nil {
		return err
	}

	outsink.Printf(sink, "RTCM %d MSM7 (%s Full Pseudorange and PhaseRange plus CNR)\n", header.MessageType, gnssName)
	outsink.Printf(sink, "  Reference Station ID: %d\n", header.StationID)
	outsink.Printf(sink, "  Epoch Time: %d ms\n", header.EpochTimeMS)
	outsink.Printf(sink, "  Satellites: %d, Signals: %d, Cells: %d\n", len(header.Satellites), len(header.Signals), header.NumCells())

	outsink.Printf(sink, "  Satellite Data\n")
	for _, s := range sats {
		outsink.Printf(sink, "    %s%02d range=%.4fms extInfo=%d phaseRate=%dm/s\n",
			gnssName[:1], s.PRN, s.RoughRangeMS, s.ExtendedInfo, s.RoughPhaseRateMS)
	}

	outsink.Printf(sink, "  Signal Data\n")
	for _, sig := range signals {
		outsink.Printf(sink, "    %s%02d/S%02d pr=%+.4fm ph=%+.4fm lock=%d half=%t cnr=%.2fdB-Hz phRate=%+.4fm/s\n",
			gnssName[:1], sig.PRN, sig.SignalID, sig.FinePseudorangeM, sig.FinePhaseRangeM,
			sig.LockIndicator, sig.HalfCycleAmbiguity, sig.CNRdBHz, sig.FinePhaseRateMS)
	}
	return nil
}

func decodeMSM4(payload []byte, sink outsink.Sink, gnssName string) error {
	header, err := msm.ParseHeader(payload)
	if err != nil {
		return err
	}
	sats, signals, err := msm.DecodeBodyMSM4(payload, header)
	if err != nil {
		return err
	}

	outsink.Printf(sink, "RTCM %d MSM4 (%s)\n", header.MessageType, gnssName)
	outsink.Printf(sink, "  Reference Station ID: %d\n", header.StationID)
	outsink.Printf(sink, "  Epoch Time: %d ms\n", header.EpochTimeMS)
	outsink.Printf(sink, "  Satellites: %d, Signals: %d, Cells: %d\n", len(header.Satellites), len(header.Signals), header.NumCells())

	for _, s := range sats {
		outsink.Printf(sink, "    %s%02d roughRange=%dms extInfo=%d\n", gnssName[:1], s.PRN, s.RoughRangeMS, s.ExtendedInfo)
	}

	for _, sig := range signals {
		outsink.Printf(sink, "    %s%02d/S%02d pr=%.4fm ph=%.4fm lock=%d half=%t cnr=%d\n",
			gnssName[:1], sig.PRN, sig.SignalID, sig.FinePseudorangeM, sig.FinePhaseRangeM,
			sig.LockIndicator, sig.HalfCycleAmbiguity, sig.CNR)
	}
	return nil
}
